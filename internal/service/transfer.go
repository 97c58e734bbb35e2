package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"heritage_tree/internal/model"
)

// BackupFilename 导出文件名
func BackupFilename(now time.Time) string {
	return "heritage_backup_" + now.Format("2006-01-02") + ".json"
}

// ExportPeople 导出为缩进的 JSON 数组
func ExportPeople(people []model.Person) ([]byte, error) {
	if people == nil {
		people = []model.Person{}
	}
	data, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return nil, NewError(ErrInternal, "failed to export people", err)
	}
	return data, nil
}

// ParseImport 解析导入文档。
// 只接受对象数组，每个对象必须有非空且唯一的 id，否则整个导入被拒绝。
func ParseImport(data []byte) ([]model.Person, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewError(ErrInvalidInput, "import file must contain a JSON array", nil)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, NewError(ErrInvalidInput, "import file is not valid JSON", err)
	}

	people := make([]model.Person, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, NewError(ErrInvalidInput, fmt.Sprintf("entry %d is not an object", i), nil)
		}
		var p model.Person
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, NewError(ErrInvalidInput, fmt.Sprintf("entry %d is not a valid person", i), err)
		}
		if p.ID == "" {
			return nil, NewError(ErrInvalidInput, fmt.Sprintf("entry %d has no id", i), nil)
		}
		if seen[p.ID] {
			return nil, NewError(ErrInvalidInput, fmt.Sprintf("duplicate id %q", p.ID), nil)
		}
		seen[p.ID] = true
		p.Normalize()
		people = append(people, p)
	}
	return people, nil
}
