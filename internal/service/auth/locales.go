package auth

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

var Languages = []string{"zh-CN", "en-US", "ja-JP", "zh-TW"}

func translation(row *models.Internationalization, lang string) string {
	switch lang {
	case "zh-CN":
		return row.ZhCN
	case "en-US":
		return row.EnUS
	case "ja-JP":
		return row.JaJP
	case "zh-TW":
		return row.ZhTW
	}
	return ""
}

// Locales turns the translation tree into one nested object per language,
// e.g. {"en-US": {"menu": {"system": "System"}}}.
func (s *AuthService) Locales(ctx context.Context) (map[string]map[string]any, error) {
	rows, err := s.I18n.AllInternationalization(ctx)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	return BuildLocales(ctx, rows), nil
}

func BuildLocales(ctx context.Context, rows []models.Internationalization) map[string]map[string]any {
	byID := make(map[string]int, len(rows))
	for i := range rows {
		byID[rows[i].ID] = i
	}
	children := make(map[string][]int, len(rows))
	var roots []int
	for i := range rows {
		p := rows[i].ParentID
		if p == nil {
			roots = append(roots, i)
			continue
		}
		if _, ok := byID[*p]; !ok {
			roots = append(roots, i)
			continue
		}
		children[*p] = append(children[*p], i)
	}

	out := make(map[string]map[string]any, len(Languages))
	for _, lang := range Languages {
		out[lang] = map[string]any{}
	}

	type frame struct {
		idx int
		dst []map[string]any
	}
	visited := make([]bool, len(rows))
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		dst := make([]map[string]any, len(Languages))
		for j, lang := range Languages {
			dst[j] = out[lang]
		}
		stack = append(stack, frame{idx: roots[i], dst: dst})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.idx] {
			continue
		}
		visited[f.idx] = true
		row := &rows[f.idx]

		kids := children[row.ID]
		if len(kids) == 0 {
			for j, lang := range Languages {
				if _, taken := f.dst[j][row.Name]; !taken {
					f.dst[j][row.Name] = translation(row, lang)
				}
			}
			continue
		}

		next := make([]map[string]any, len(Languages))
		for j := range Languages {
			m, ok := f.dst[j][row.Name].(map[string]any)
			if !ok {
				m = map[string]any{}
				f.dst[j][row.Name] = m
			}
			next[j] = m
		}
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, frame{idx: kids[k], dst: next})
		}
	}

	for i := range visited {
		if !visited[i] {
			logging.FromContext(ctx).Warn("locale_unreachable", "id", rows[i].ID, "name", rows[i].Name)
		}
	}
	return out
}
