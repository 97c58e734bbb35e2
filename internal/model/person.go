package model

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "Male"   // 男
	GenderFemale Gender = "Female" // 女
	GenderOther  Gender = "Other"  // 其他
)

// ParseGender 解析性别，大小写不敏感，未知值归为 Other
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "男":
		return GenderMale
	case "female", "f", "女":
		return GenderFemale
	default:
		return GenderOther
	}
}

// UnmarshalJSON 反序列化性别
func (g *Gender) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*g = ParseGender(s)
	return nil
}

// Person 家族成员模型
type Person struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	MaidenName   string `json:"maidenName,omitempty"`
	Gender       Gender `json:"gender"`
	BirthDate    string `json:"birthDate" validate:"required"`
	DeathDate    string `json:"deathDate,omitempty"`
	Bio          string `json:"bio,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
	PlaceOfBirth string `json:"placeOfBirth,omitempty"`
	Occupation   string `json:"occupation,omitempty"`

	// 关系字段（弱引用，可能为空或指向不存在的成员）
	FatherID string `json:"fatherId,omitempty"`
	MotherID string `json:"motherId,omitempty"`
	SpouseID string `json:"spouseId,omitempty"`
}

// FullName 全名
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IsRoot 没有父母信息的成员
func (p Person) IsRoot() bool {
	return p.FatherID == "" && p.MotherID == ""
}

// IsChildOf 判断是否为指定成员的子女
func (p Person) IsChildOf(id string) bool {
	return id != "" && (p.FatherID == id || p.MotherID == id)
}

// PlaceholderPhoto 根据ID生成确定性的占位头像
func PlaceholderPhoto(id string, size int) string {
	return "https://picsum.photos/seed/" + id + "/" + strconv.Itoa(size) + "/" + strconv.Itoa(size)
}

// Avatar 头像地址，未设置时回退到占位图
func (p Person) Avatar() string {
	if p.PhotoURL != "" {
		return p.PhotoURL
	}
	return PlaceholderPhoto(p.ID, 100)
}

var yearPattern = regexp.MustCompile(`^\s*(\d{4})`)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01", "2006", "01/02/2006", "January 2, 2006"}

// Year 从日期字符串中提取年份
func Year(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Year(), true
		}
	}
	if m := yearPattern.FindStringSubmatch(date); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	return 0, false
}

func yearLabel(date string) string {
	if y, ok := Year(date); ok {
		return strconv.Itoa(y)
	}
	return "?"
}

// Lifespan 树节点上的年份标签
func (p Person) Lifespan() string {
	if p.DeathDate == "" {
		return "b. " + yearLabel(p.BirthDate)
	}
	return yearLabel(p.BirthDate) + " — " + yearLabel(p.DeathDate)
}

// DirectoryLifespan 名录中的年份标签
func (p Person) DirectoryLifespan() string {
	if p.DeathDate == "" {
		return yearLabel(p.BirthDate) + " — Present"
	}
	return yearLabel(p.BirthDate) + " — " + yearLabel(p.DeathDate)
}

// Clone 复制成员列表
func Clone(people []Person) []Person {
	if people == nil {
		return nil
	}
	out := make([]Person, len(people))
	copy(out, people)
	return out
}

// Normalize 规范化字段
func (p *Person) Normalize() {
	p.Gender = ParseGender(string(p.Gender))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	p.DeathDate = strings.TrimSpace(p.DeathDate)
}
