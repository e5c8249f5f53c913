package classify

import (
	"strings"

	"cnpjscan/internal/company"
	"cnpjscan/internal/services/receitaws"
	"cnpjscan/internal/textutil"
)

// Fallbacks used when the registration omits a field.
const (
	DefaultCompanyName = "Nome não encontrado"
	DefaultTradeName   = "Nome fantasia não encontrado"
	DefaultSize        = "PORTE NAO INFORMADO"
	DefaultStatus      = "Situação não encontrada"
	DefaultDescription = "Descrição não encontrada"
	DefaultAPIError    = "Erro desconhecido na API"
	DefaultMalformed   = "Retorno da consulta não é do tipo dict"
	requestErrorPrefix = "Erro na requisição: "
)

// Outcome is the classification of one lookup: either one or more activity
// rows, or exactly one error record.
type Outcome struct {
	Activities []company.ClassifiedActivity
	Error      *company.ErrorRecord
}

// Failed reports whether the outcome is an error record.
func (o Outcome) Failed() bool {
	return o.Error != nil
}

// Classifier tags activities against a fixed reference code set. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	reference map[string]struct{}
}

// New builds a classifier. Reference codes are cleaned the same way as
// activity codes so "47.42-3/00" and "4742300" are equivalent.
func New(codes []string) *Classifier {
	reference := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if cleaned := textutil.CleanCode(code); cleaned != "" {
			reference[cleaned] = struct{}{}
		}
	}
	return &Classifier{reference: reference}
}

// Matches reports whether code (raw or cleaned) belongs to the reference set.
func (c *Classifier) Matches(code string) bool {
	_, ok := c.reference[textutil.CleanCode(code)]
	return ok
}

// Classify maps a decoded lookup result for item to activity rows or an error.
func (c *Classifier) Classify(item company.WorkItem, result receitaws.Result) Outcome {
	switch r := result.(type) {
	case receitaws.Success:
		return Outcome{Activities: c.activities(item, r.Company)}
	case receitaws.APIError:
		message := strings.TrimSpace(r.Message)
		if message == "" {
			message = DefaultAPIError
		}
		return failure(item, message)
	case receitaws.Malformed:
		message := r.Raw
		if strings.TrimSpace(message) == "" {
			message = DefaultMalformed
		}
		return failure(item, message)
	default:
		return failure(item, DefaultMalformed)
	}
}

// FromError records a lookup that never produced a result (network failure,
// timeout, or a non-200 status).
func (c *Classifier) FromError(item company.WorkItem, err error) company.ErrorRecord {
	message := DefaultMalformed
	if err != nil {
		message = requestErrorPrefix + err.Error()
	}
	return company.ErrorRecord{ClientID: item.ClientID, TaxID: item.TaxID, Message: message}
}

func (c *Classifier) activities(item company.WorkItem, info receitaws.Company) []company.ClassifiedActivity {
	base := company.ClassifiedActivity{
		ClientID:     item.ClientID,
		TaxID:        item.TaxID,
		CompanyName:  foldOr(info.Name, DefaultCompanyName),
		TradeName:    foldOr(info.TradeName, DefaultTradeName),
		SizeCategory: foldOr(info.Size, DefaultSize),
		Status:       foldOr(info.Status, DefaultStatus),
	}

	entries := make([]receitaws.Activity, 0, 1+len(info.Secondary))
	if len(info.Primary) > 0 {
		entries = append(entries, info.Primary[0])
	}
	entries = append(entries, info.Secondary...)

	rows := make([]company.ClassifiedActivity, 0, len(entries))
	for i, entry := range entries {
		row := base
		row.ActivityCode = textutil.CleanCode(entry.Code)
		row.ActivityDescription = foldOr(entry.Text, DefaultDescription)
		row.Kind = company.KindSecondary
		if i == 0 && len(info.Primary) > 0 {
			row.Kind = company.KindPrimary
		}
		row.Match = company.Mismatch
		if _, ok := c.reference[row.ActivityCode]; ok {
			row.Match = company.Match
		}
		rows = append(rows, row)
	}
	return rows
}

func failure(item company.WorkItem, message string) Outcome {
	return Outcome{Error: &company.ErrorRecord{
		ClientID: item.ClientID,
		TaxID:    item.TaxID,
		Message:  message,
	}}
}

func foldOr(value *string, fallback string) string {
	if value == nil {
		return textutil.Fold(fallback)
	}
	return textutil.Fold(*value)
}
