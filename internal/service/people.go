package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"heritage_tree/internal/graph"
	"heritage_tree/internal/layout"
	"heritage_tree/internal/model"
	"heritage_tree/internal/render"
	"heritage_tree/internal/repository"
)

// 变更操作名
const (
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// PeopleService 成员存储服务。
// 所有变更先构建新列表并持久化，保存成功后才替换内存中的列表。
type PeopleService struct {
	mu      sync.RWMutex
	people  []model.Person
	store   repository.Persistence
	logger  *Logger
	metrics *Metrics
	layout  layout.Config
	style   render.Style

	revision uint64 // 每次替换列表后递增
	trees    *Cache // 按 revision 缓存的解析与布局结果
}

// NewPeopleService 创建成员存储服务实例
func NewPeopleService(store repository.Persistence, logger *Logger) *PeopleService {
	return &PeopleService{
		store:  store,
		logger: logger,
		layout: layout.DefaultConfig(),
		style:  render.DefaultStyle(),
		trees:  NewCache(&CacheConfig{MaxItems: 4}),
	}
}

// WithMetrics 设置指标服务
func (s *PeopleService) WithMetrics(m *Metrics) *PeopleService {
	s.metrics = m
	return s
}

// Load 从持久化层加载；文档不存在时使用示例数据
func (s *PeopleService) Load(ctx context.Context) error {
	people, ok, err := s.store.Load(ctx)
	if err != nil {
		return NewError(ErrDatabase, "failed to load people", err)
	}
	if !ok {
		s.logger.Info("No saved document found, using initial people")
		people = model.InitialPeople()
	}
	for i := range people {
		people[i].Normalize()
	}

	s.mu.Lock()
	s.people = people
	s.revision++
	s.mu.Unlock()
	s.metrics.SetPeople(len(people))
	return nil
}

// List 当前全部成员（副本）
func (s *PeopleService) List() []model.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Clone(s.people)
}

// Len 成员数
func (s *PeopleService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people)
}

// Get 按ID获取成员
func (s *PeopleService) Get(id string) (model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.people, id); i >= 0 {
		return s.people[i], nil
	}
	return model.Person{}, NewError(ErrNotFound, "person not found", nil).WithContext("id", id)
}

// Profile 成员详情及其直系亲属
type Profile struct {
	Person   model.Person   `json:"person"`
	Father   *model.Person  `json:"father,omitempty"`
	Mother   *model.Person  `json:"mother,omitempty"`
	Spouse   *model.Person  `json:"spouse,omitempty"`
	Children []model.Person `json:"children"`
}

// FamilyContext 生成传记时提供给模型的家庭背景
func (p *Profile) FamilyContext() string {
	name := func(r *model.Person) string {
		if r == nil {
			return "Unknown"
		}
		return r.FirstName
	}
	return p.Person.FirstName + " is the child of " + name(p.Father) + " and " + name(p.Mother) +
		". They have " + strconv.Itoa(len(p.Children)) + " children."
}

// Profile 获取成员详情
func (s *PeopleService) Profile(id string) (*Profile, error) {
	people := s.List()
	idx := graph.NewIndex(people)
	p, ok := idx.Get(id)
	if !ok {
		return nil, NewError(ErrNotFound, "person not found", nil).WithContext("id", id)
	}
	lookup := func(ref string) *model.Person {
		if r, ok := idx.Get(ref); ok {
			return &r
		}
		return nil
	}
	return &Profile{
		Person:   p,
		Father:   lookup(p.FatherID),
		Mother:   lookup(p.MotherID),
		Spouse:   lookup(p.SpouseID),
		Children: idx.Children(id),
	}, nil
}

// Directory 名录搜索，按全名大小写不敏感地子串匹配，保持存储顺序
func (s *PeopleService) Directory(query string) []model.Person {
	people := s.List()
	q := strings.ToLower(query)
	if q == "" {
		return people
	}
	out := make([]model.Person, 0)
	for _, p := range people {
		if strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), q) {
			out = append(out, p)
		}
	}
	return out
}

// Add 新增成员，分配新ID和默认头像
func (s *PeopleService) Add(ctx context.Context, p model.Person) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Normalize()
	p.ID = uuid.New().String()
	if p.PhotoURL == "" {
		p.PhotoURL = model.PlaceholderPhoto(p.ID, 200)
	}
	if err := ValidatePerson(p, s.exists); err != nil {
		s.metrics.ObserveMutation(OpAdd, err)
		return model.Person{}, err
	}

	next := append(model.Clone(s.people), p)
	if err := s.commit(ctx, OpAdd, next); err != nil {
		return model.Person{}, err
	}
	s.logger.Info("Added person %s (%s)", p.ID, p.FullName())
	return p, nil
}

// Update 按ID替换成员，ID保持不变
func (s *PeopleService) Update(ctx context.Context, id string, p model.Person) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.people, id)
	if i < 0 {
		err := NewError(ErrNotFound, "person not found", nil).WithContext("id", id)
		s.metrics.ObserveMutation(OpUpdate, err)
		return model.Person{}, err
	}
	old := s.people[i]
	p.Normalize()
	p.ID = id

	// 只校验有变化的引用，已有的悬空引用保持容忍
	exists := func(ref string) bool {
		return ref == old.FatherID || ref == old.MotherID || ref == old.SpouseID || s.exists(ref)
	}
	if err := ValidatePerson(p, exists); err != nil {
		s.metrics.ObserveMutation(OpUpdate, err)
		return model.Person{}, err
	}

	next := model.Clone(s.people)
	next[i] = p
	if err := s.commit(ctx, OpUpdate, next); err != nil {
		return model.Person{}, err
	}
	s.logger.Info("Updated person %s", id)
	return p, nil
}

// SetBio 只更新传记字段，基于写锁内的最新记录，不覆盖其他并发修改
func (s *PeopleService) SetBio(ctx context.Context, id, bio string) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.people, id)
	if i < 0 {
		err := NewError(ErrNotFound, "person not found", nil).WithContext("id", id)
		s.metrics.ObserveMutation(OpUpdate, err)
		return model.Person{}, err
	}

	next := model.Clone(s.people)
	next[i].Bio = bio
	if err := s.commit(ctx, OpUpdate, next); err != nil {
		return model.Person{}, err
	}
	s.logger.Info("Updated bio of person %s", id)
	return next[i], nil
}

// Delete 删除成员并清理其他成员对它的引用，需要管理员权限和确认
func (s *PeopleService) Delete(ctx context.Context, id string, user *model.User, confirmed bool) error {
	if !user.IsAdmin() {
		err := NewError(ErrAuthorization, "only admins can delete people", nil)
		s.metrics.ObserveMutation(OpDelete, err)
		return err
	}
	if !confirmed {
		err := NewError(ErrConfirmation, "delete must be confirmed", nil).WithContext("id", id)
		s.metrics.ObserveMutation(OpDelete, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.people, id) < 0 {
		err := NewError(ErrNotFound, "person not found", nil).WithContext("id", id)
		s.metrics.ObserveMutation(OpDelete, err)
		return err
	}

	next := make([]model.Person, 0, len(s.people)-1)
	for _, p := range s.people {
		if p.ID == id {
			continue
		}
		if p.FatherID == id {
			p.FatherID = ""
		}
		if p.MotherID == id {
			p.MotherID = ""
		}
		if p.SpouseID == id {
			p.SpouseID = ""
		}
		next = append(next, p)
	}
	if err := s.commit(ctx, OpDelete, next); err != nil {
		return err
	}
	s.logger.Info("Deleted person %s by %s", id, user.Username)
	return nil
}

// Replace 整体替换成员列表（导入、AI 解析结果）
func (s *PeopleService) Replace(ctx context.Context, people []model.Person) error {
	next := model.Clone(people)
	if next == nil {
		next = []model.Person{}
	}
	for i := range next {
		next[i].Normalize()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(ctx, OpReplace, next); err != nil {
		return err
	}
	s.logger.Info("Replaced store with %d people", len(next))
	return nil
}

// commit 持久化新列表，成功后替换。调用方需持有写锁
func (s *PeopleService) commit(ctx context.Context, op string, next []model.Person) error {
	if err := s.store.Save(ctx, next); err != nil {
		appErr := NewError(ErrDatabase, "failed to save people", err).WithContext("operation", op)
		s.logger.Error("Persist %s failed: %v", op, err)
		s.metrics.ObserveMutation(op, appErr)
		return appErr
	}
	s.people = next
	s.revision++
	s.trees.Clear()
	s.metrics.ObserveMutation(op, nil)
	s.metrics.SetPeople(len(next))
	return nil
}

func (s *PeopleService) exists(id string) bool {
	return indexOf(s.people, id) >= 0
}

func indexOf(people []model.Person, id string) int {
	for i := range people {
		if people[i].ID == id {
			return i
		}
	}
	return -1
}

// Tree 一次完整的 解析 → 布局 → 场景 结果
type Tree struct {
	Hierarchy graph.Result
	Layout    *layout.Result
	Scene     *render.Scene
}

// Tree 基于当前快照构建家族树，同一版本的结果会被复用
func (s *PeopleService) Tree(format string) *Tree {
	start := time.Now()
	defer s.metrics.ObserveRender(format, start)

	s.mu.RLock()
	people := model.Clone(s.people)
	key := "tree:" + strconv.FormatUint(s.revision, 10)
	s.mu.RUnlock()

	if cached, ok := s.trees.Get(key); ok {
		return cached.(*Tree)
	}

	res := graph.Resolve(people)
	if len(res.Suppressed) > 0 {
		s.logger.Debug("Cycle detected, suppressed children: %s", strings.Join(res.Suppressed, ","))
	}
	if res.Excluded > 0 {
		s.logger.Debug("%d people are not connected to the primary root", res.Excluded)
	}
	lr := layout.Tree(res.Root, s.layout)
	tree := &Tree{
		Hierarchy: res,
		Layout:    lr,
		Scene:     render.BuildScene(lr, s.style),
	}
	s.trees.Set(key, tree, 0)
	return tree
}
