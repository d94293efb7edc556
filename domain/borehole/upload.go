package borehole

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the ledger entry written for every accepted file. It carries
// metadata only; the table itself is never persisted.
type Upload struct {
	ID         string    `db:"id" json:"id"`
	Filename   string    `db:"filename" json:"filename"`
	Rows       int       `db:"row_count" json:"rows"`
	Columns    int       `db:"column_count" json:"columns"`
	Boreholes  int       `db:"borehole_count" json:"boreholes"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// NewUpload describes a freshly loaded table.
func NewUpload(filename string, t *Table) Upload {
	u := Upload{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
	}
	if t != nil {
		u.Rows = t.Len()
		u.Columns = len(t.Columns)
		u.Boreholes = len(t.Schema().Boreholes)
	}
	return u
}
