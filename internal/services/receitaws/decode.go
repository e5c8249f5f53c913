package receitaws

import (
	"bytes"
	"encoding/json"
	"strings"
)

type payload struct {
	Status    *string           `json:"status"`
	Message   *string           `json:"message"`
	Name      *string           `json:"nome"`
	TradeName *string           `json:"fantasia"`
	Size      *string           `json:"porte"`
	Situation *string           `json:"situacao"`
	Primary   []activityPayload `json:"atividade_principal"`
	Secondary []activityPayload `json:"atividades_secundarias"`
}

type activityPayload struct {
	Code *string `json:"code"`
	Text *string `json:"text"`
}

// Decode interprets a 200 response body. It never fails: anything that is
// not an error object or a registration with a primary activity becomes
// Malformed.
func Decode(body []byte) Result {
	raw := string(body)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Malformed{Raw: raw}
	}

	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Malformed{Raw: raw}
	}

	if p.Status != nil && strings.EqualFold(strings.TrimSpace(*p.Status), "ERROR") {
		msg := ""
		if p.Message != nil {
			msg = strings.TrimSpace(*p.Message)
		}
		return APIError{Message: msg}
	}

	if len(p.Primary) == 0 {
		return Malformed{Raw: raw}
	}
	primary, ok := convertActivities(p.Primary)
	if !ok {
		return Malformed{Raw: raw}
	}
	secondary, ok := convertActivities(p.Secondary)
	if !ok {
		return Malformed{Raw: raw}
	}

	return Success{Company: Company{
		Name:      p.Name,
		TradeName: p.TradeName,
		Size:      p.Size,
		Status:    p.Situation,
		Primary:   primary,
		Secondary: secondary,
	}}
}

func convertActivities(entries []activityPayload) ([]Activity, bool) {
	out := make([]Activity, 0, len(entries))
	for _, entry := range entries {
		if entry.Code == nil {
			return nil, false
		}
		out = append(out, Activity{Code: *entry.Code, Text: entry.Text})
	}
	return out, true
}
