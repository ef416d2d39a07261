// Package html renders statements as standalone HTML documents.
package html

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"releve/internal/core"
	"releve/web"
)

const Name = "file"

var (
	statementTmpl = template.Must(template.ParseFS(web.TemplatesFS, "templates/statement.html"))
	statementCSS  = template.CSS(mustRead(web.StaticFS, "static/statement.css"))
)

func mustRead(fsys fs.FS, name string) string {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

type row struct {
	Date        string
	Description string
	Amount      string
	Balance     string
	Credit      bool
}

type view struct {
	Bank    string
	Account string
	Period  string
	RunID   string
	Opening string
	Closing string
	Credits string
	Debits  string
	Rows    []row
	CSS     template.CSS
}

func newView(st core.Statement) view {
	ov := st.Batch.Overview()
	v := view{
		Bank:    st.Account.Bank,
		Account: st.Account.Number,
		Period:  st.Batch.Period.String(),
		RunID:   st.RunID,
		Opening: st.Batch.Opening.String(),
		Closing: st.Batch.Closing.String(),
		Credits: ov.Credits.String(),
		Debits:  ov.Debits.String(),
		Rows:    make([]row, 0, len(st.Batch.Transactions)),
		CSS:     statementCSS,
	}
	for _, t := range st.Batch.Transactions {
		v.Rows = append(v.Rows, row{
			Date:        t.Date.Format("02/01/2006"),
			Description: t.Description(),
			Amount:      t.Amount.String(),
			Balance:     t.Balance.String(),
			Credit:      t.Amount.Cents > 0,
		})
	}
	return v
}

// Encode writes st as an HTML document.
func Encode(w io.Writer, st core.Statement) error {
	if err := statementTmpl.ExecuteTemplate(w, "statement", newView(st)); err != nil {
		return fmt.Errorf("execute statement template: %w", err)
	}
	return nil
}

// FileName returns e.g. "releve_compte_03_2024_012.html".
func FileName(st core.Statement) string {
	p := st.Batch.Period
	return fmt.Sprintf("releve_compte_%02d_%d_%s.html", p.Month, p.Year, st.Account.Suffix())
}

// FileRenderer writes one HTML file per statement into a directory.
type FileRenderer struct {
	dir string
}

// NewFileRenderer creates dir if needed.
func NewFileRenderer(dir string) (*FileRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileRenderer{dir: dir}, nil
}

func (r *FileRenderer) Name() string { return Name }

// Render writes the statement and returns its path. An existing file for the same
// period and account is replaced.
func (r *FileRenderer) Render(ctx context.Context, st core.Statement) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, FileName(st))
	tmp, err := os.CreateTemp(r.dir, ".releve-*.html")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, st); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
