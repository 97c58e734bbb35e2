package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
)

// PublishTarget 发布目标
type PublishTarget struct {
	Host   string `json:"host" mapstructure:"host"`     // API 地址，为空时使用 api.github.com
	Owner  string `json:"owner" mapstructure:"owner"`   // 仓库所有者
	Repo   string `json:"repo" mapstructure:"repo"`     // 仓库名
	Branch string `json:"branch" mapstructure:"branch"` // 分支
	Path   string `json:"path" mapstructure:"path"`     // 文件路径
	Token  string `json:"-" mapstructure:"token"`       // 访问令牌
}

// Merge 用非空字段覆盖
func (t PublishTarget) Merge(o PublishTarget) PublishTarget {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return PublishTarget{
		Host:   pick(t.Host, o.Host),
		Owner:  pick(t.Owner, o.Owner),
		Repo:   pick(t.Repo, o.Repo),
		Branch: pick(t.Branch, o.Branch),
		Path:   pick(t.Path, o.Path),
		Token:  pick(t.Token, o.Token),
	}
}

// Validate 校验必填字段
func (t PublishTarget) Validate() error {
	var missing []string
	fields := []struct{ name, value string }{
		{"owner", t.Owner}, {"repo", t.Repo}, {"path", t.Path}, {"token", t.Token},
	}
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return NewError(ErrValidation, "publish target is missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Publisher 将数据提交到远程文件，返回提交 SHA
type Publisher interface {
	Publish(ctx context.Context, target PublishTarget, data []byte) (string, error)
}

// GitHubPublisher 基于 GitHub Contents API 的发布服务
type GitHubPublisher struct {
	logger *Logger
	retry  *Retry
	now    func() time.Time
}

// NewGitHubPublisher 创建发布服务实例
func NewGitHubPublisher(logger *Logger) *GitHubPublisher {
	return &GitHubPublisher{logger: logger, retry: NewRetry(DefaultRetryConfig(), logger), now: time.Now}
}

// WithRetry 设置获取远程版本时的重试器
func (p *GitHubPublisher) WithRetry(r *Retry) *GitHubPublisher {
	p.retry = r
	return p
}

func (p *GitHubPublisher) client(target PublishTarget) (*github.Client, error) {
	client := github.NewClient(nil).WithAuthToken(target.Token)
	if target.Host != "" {
		host := target.Host
		if !strings.HasSuffix(host, "/") {
			host += "/"
		}
		base, err := url.Parse(host)
		if err != nil {
			return nil, NewError(ErrValidation, "invalid publish host", err)
		}
		client.BaseURL = base
	}
	return client, nil
}

// Publish 先获取远程文件的 sha，再带着 sha 更新文件
func (p *GitHubPublisher) Publish(ctx context.Context, target PublishTarget, data []byte) (string, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	client, err := p.client(target)
	if err != nil {
		return "", err
	}

	var ref *github.RepositoryContentGetOptions
	if target.Branch != "" {
		ref = &github.RepositoryContentGetOptions{Ref: target.Branch}
	}
	// 读取是幂等的，服务端错误时重试；写入不重试
	var file *github.RepositoryContent
	err = p.retry.Do(ctx, "publish:"+target.Path, func(ctx context.Context) error {
		var resp *github.Response
		var err error
		file, _, resp, err = client.Repositories.GetContents(ctx, target.Owner, target.Repo, target.Path, ref)
		if err == nil {
			return nil
		}
		switch status := statusOf(resp, err); {
		case status == http.StatusNotFound:
			return Permanent(NewError(ErrExternal, "remote file not found", err).WithContext("path", target.Path))
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return Permanent(NewError(ErrExternal, "invalid publish credential", err))
		case status > 0 && status < http.StatusInternalServerError:
			return Permanent(NewError(ErrExternal, "failed to fetch current remote revision", err))
		default:
			return NewError(ErrExternal, "failed to fetch current remote revision", err)
		}
	})
	if err != nil {
		return "", err
	}
	if file == nil || file.GetSHA() == "" {
		return "", NewError(ErrExternal, "remote path is not a file", nil).WithContext("path", target.Path)
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr("Update family tree data " + p.now().UTC().Format(time.RFC3339)),
		Content: data,
		SHA:     github.Ptr(file.GetSHA()),
	}
	if target.Branch != "" {
		opts.Branch = github.Ptr(target.Branch)
	}
	result, resp, err := client.Repositories.UpdateFile(ctx, target.Owner, target.Repo, target.Path, opts)
	if err != nil {
		switch statusOf(resp, err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", NewError(ErrExternal, "invalid publish credential", err)
		case http.StatusConflict:
			return "", NewError(ErrExternal, "remote file changed since it was fetched", err)
		default:
			return "", NewError(ErrExternal, "failed to update remote file", err)
		}
	}

	sha := result.Commit.GetSHA()
	p.logger.Info("Published %s/%s:%s at %s", target.Owner, target.Repo, target.Path, sha)
	return sha, nil
}

func statusOf(resp *github.Response, err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return 0
}
