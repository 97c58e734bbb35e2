package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"heritage_tree/internal/model"
)

// 传记生成失败时的固定文案
const (
	BioUnavailable = "The stars are silent today. Please try again later."
	BioEmpty       = "Could not generate biography at this time."
)

// BioWriter 传记生成，失败时返回固定文案而不是错误
type BioWriter interface {
	GenerateBio(ctx context.Context, person model.Person, familyContext string) string
}

// RecordParser 将自由文本解析为成员列表
type RecordParser interface {
	ParseFamilyText(ctx context.Context, text string) ([]model.Person, error)
}

// AIConfig AI 服务配置
type AIConfig struct {
	APIKey      string  // API 密钥
	BaseURL     string  // OpenAI 兼容接口地址，为空时使用官方地址
	Model       string  // 模型名称
	Temperature float32 // 传记生成温度
	TopP        float32 // 传记生成 top_p
}

// OpenAIClient 基于 OpenAI 兼容接口的 AI 服务
type OpenAIClient struct {
	client *openai.Client
	config *AIConfig
	logger *Logger
}

// NewOpenAIClient 创建 AI 服务实例
func NewOpenAIClient(config *AIConfig, logger *Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, NewError(ErrConfig, "ai api key is not set", nil)
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
		logger.Warn("AI model not set, defaulting to %s", config.Model)
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	logger.Info("Initializing AI client, model=%s", config.Model)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

func bioPrompt(p model.Person, familyContext string) string {
	orUnknown := func(s string) string {
		if s == "" {
			return "Unknown"
		}
		return s
	}
	if familyContext == "" {
		familyContext = "Part of a cherished family tree."
	}
	var sb strings.Builder
	sb.WriteString("Write a beautiful, emotional, and concise family heritage biography (about 100 words) for the following person:\n")
	fmt.Fprintf(&sb, "Name: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&sb, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&sb, "Birth Date: %s\n", p.BirthDate)
	fmt.Fprintf(&sb, "Place of Birth: %s\n", orUnknown(p.PlaceOfBirth))
	fmt.Fprintf(&sb, "Occupation: %s\n", orUnknown(p.Occupation))
	if p.DeathDate != "" {
		fmt.Fprintf(&sb, "Death Date: %s\n", p.DeathDate)
	}
	fmt.Fprintf(&sb, "\nFamily Context: %s\n\n", familyContext)
	sb.WriteString("Make it sound like a legacy record. Include a poetic touch about their contribution to the family line.")
	return sb.String()
}

// GenerateBio 生成传记
func (c *OpenAIClient) GenerateBio(ctx context.Context, person model.Person, familyContext string) string {
	c.logger.Debug("Generating bio for %s via %s", person.ID, c.config.Model)
	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: bioPrompt(person, familyContext)},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("AI bio call failed: %v", err)
		return BioUnavailable
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.logger.Warn("AI returned no bio content")
		return BioEmpty
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

const parseSystemPrompt = `You extract genealogical records from free text.
Reply with a single JSON object of the form {"people": [...]}.
Each person has: id (short unique string you choose), firstName, lastName, maidenName, gender ("Male", "Female" or "Other"),
birthDate (YYYY-MM-DD, or YYYY-01-01 when only the year is known), deathDate, placeOfBirth, occupation, bio,
fatherId, motherId, spouseId. Relationship fields must reference ids from the same reply. Omit unknown fields.`

type parsedRecords struct {
	People []model.Person `json:"people"`
}

// ParseFamilyText 解析自由文本。返回的ID独立于现有数据，应用结果意味着整体替换
func (c *OpenAIClient) ParseFamilyText(ctx context.Context, text string) ([]model.Person, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewError(ErrValidation, "text is required", nil)
	}
	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: parseSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("AI parse call failed: %v", err)
		return nil, NewError(ErrExternal, "AI service call failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewError(ErrExternal, "AI service returned no choices", nil)
	}

	var records parsedRecords
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &records); err != nil {
		return nil, NewError(ErrExternal, "AI service returned malformed records", err)
	}
	seen := make(map[string]bool, len(records.People))
	for i := range records.People {
		p := &records.People[i]
		p.Normalize()
		if p.ID == "" || seen[p.ID] {
			return nil, NewError(ErrExternal, "AI service returned records without unique ids", nil)
		}
		seen[p.ID] = true
	}
	c.logger.Info("AI parsed %d people", len(records.People))
	return records.People, nil
}

// stripFences 去掉模型回复外层的 ``` 代码块标记
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
