package model

import "encoding/json"

// TableDocument is the caller-side snapshot of a stored table. All rows are
// expected to have the header's column count; nothing enforces it.
type TableDocument struct {
	HeaderRow []string   `json:"header_row"`
	Rows      [][]string `json:"rows"`
	UpdatedAt string     `json:"updated_at"`
}

// EncodedTable is the stored form. Each row and the header are index-keyed
// maps because the store cannot hold a sequence nested in a sequence.
type EncodedTable struct {
	HeaderRow map[string]string   `json:"headerRow"`
	TableData []map[string]string `json:"tableData"`
	UpdatedAt string              `json:"updatedAt"`
}

type SaveTableRequest struct {
	DocID     string     `json:"document_id"`
	HeaderRow []string   `json:"header_row"`
	Rows      [][]string `json:"rows"`
}

type SaveTableResponse struct {
	DocID     string `json:"document_id"`
	UpdatedAt string `json:"updated_at"`
}

// UnmarshalJSON accepts cells of any JSON type. Non-string cells written by
// older clients come back as their JSON text, null as "".
func (e *EncodedTable) UnmarshalJSON(data []byte) error {
	var raw struct {
		HeaderRow map[string]any   `json:"headerRow"`
		TableData []map[string]any `json:"tableData"`
		UpdatedAt string           `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.HeaderRow = cellsText(raw.HeaderRow)
	e.TableData = nil
	if raw.TableData != nil {
		e.TableData = make([]map[string]string, 0, len(raw.TableData))
		for _, row := range raw.TableData {
			e.TableData = append(e.TableData, cellsText(row))
		}
	}
	e.UpdatedAt = raw.UpdatedAt
	return nil
}

func cellsText(m map[string]any) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch c := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = c
		default:
			b, _ := json.Marshal(c)
			out[k] = string(b)
		}
	}
	return out
}
