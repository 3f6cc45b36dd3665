package service

import (
	"context"
	"errors"
	"time"

	"tablekeep/internal/table/model"
	"tablekeep/pkg/apperror"
	"tablekeep/pkg/indexmap"
	"tablekeep/pkg/logger"
	"tablekeep/store"
)

const (
	Collection = "tables"

	// TimestampLayout matches JavaScript's Date.toISOString.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var ErrMissingDocID = &apperror.ValidationError{Msg: "document id is required"}

type TableService struct {
	Store store.Client
	Now   func() time.Time
}

func NewTableService(client store.Client) *TableService {
	return &TableService{Store: client, Now: time.Now}
}

// EncodeTable builds the stored form of a table stamped with the current time.
func (s *TableService) EncodeTable(headerRow []string, rows [][]string) model.EncodedTable {
	return EncodeTable(headerRow, rows, s.Now())
}

// EncodeTable builds the stored form of a table stamped with at.
func EncodeTable(headerRow []string, rows [][]string, at time.Time) model.EncodedTable {
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, indexmap.ToIndexedMap(row))
	}
	return model.EncodedTable{
		HeaderRow: indexmap.ToIndexedMap(headerRow),
		TableData: data,
		UpdatedAt: at.UTC().Format(TimestampLayout),
	}
}

// DecodeTable rebuilds the header and rows in numeric key order. Shape is
// trusted: ragged rows come back ragged.
func DecodeTable(enc model.EncodedTable) model.TableDocument {
	rows := make([][]string, 0, len(enc.TableData))
	for _, row := range enc.TableData {
		rows = append(rows, indexmap.FromIndexedMap(row))
	}
	return model.TableDocument{
		HeaderRow: indexmap.FromIndexedMap(enc.HeaderRow),
		Rows:      rows,
		UpdatedAt: enc.UpdatedAt,
	}
}

// PersistTable replaces the table stored under docID.
func (s *TableService) PersistTable(ctx context.Context, docID string, headerRow []string, rows [][]string) (string, error) {
	if docID == "" {
		return "", ErrMissingDocID
	}

	enc := s.EncodeTable(headerRow, rows)
	doc, err := store.ToDocument(enc)
	if err != nil {
		return "", apperror.Persistence("encode table", err)
	}

	if err := s.Store.Set(ctx, Collection, docID, doc); err != nil {
		return "", apperror.Persistence("save table", err)
	}
	logger.Sugar.Infof("Saved table %s (%d columns, %d rows)", docID, len(headerRow), len(rows))
	return enc.UpdatedAt, nil
}

// LoadTable returns the table stored under docID. A missing table is not an
// error: found is false and err is nil.
func (s *TableService) LoadTable(ctx context.Context, docID string) (table *model.TableDocument, found bool, err error) {
	if docID == "" {
		return nil, false, ErrMissingDocID
	}

	doc, err := s.Store.Get(ctx, Collection, docID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Sugar.Infof("No table stored under %s", docID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperror.Persistence("load table", err)
	}

	var enc model.EncodedTable
	if err := doc.Decode(&enc); err != nil {
		return nil, false, apperror.Persistence("decode table", err)
	}
	decoded := DecodeTable(enc)
	return &decoded, true, nil
}
