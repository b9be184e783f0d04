// Package view renders admin pages as HTML fragments. Rendering is a
// pure function of freshly queried entity lists plus the last action's
// result; handlers re-query after every write so the renderer never
// sees stale in-flight state.
package view

import (
	"bytes"
	"fmt"
	"html/template"

	"epaperadmin/pkg/domain"
)

var pageTmpl = template.Must(template.New("page").Parse(`<section class="admin-page" data-page="{{.Page}}">
{{- if .Flash.Message}}
<div class="flash {{if .Flash.Success}}flash-success{{else}}flash-error{{end}}">{{.Flash.Message}}</div>
{{- end}}
<table class="entity-table">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</section>
`))

type pageData struct {
	Page    string
	Flash   domain.Result
	Columns []string
	Rows    [][]string
}

// Renderer writes entity tables for the admin screens. All cell values
// pass through html/template escaping; stored HTML never executes.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (r *Renderer) render(data pageData) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", data.Page, err)
	}
	return buf.String(), nil
}

// Categories renders the category table with the flash from the last
// action.
func (r *Renderer) Categories(cats []domain.Category, flash domain.Result) (string, error) {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			formatID(c.ID), c.Name, c.Slug, c.Description, c.Color,
		})
	}
	return r.render(pageData{
		Page:    "categories",
		Flash:   flash,
		Columns: []string{"ID", "Name", "Slug", "Description", "Color"},
		Rows:    rows,
	})
}

// Editions renders the edition table.
func (r *Renderer) Editions(editions []domain.Edition, flash domain.Result) (string, error) {
	rows := make([][]string, 0, len(editions))
	for _, e := range editions {
		rows = append(rows, []string{
			formatID(e.ID),
			e.Title,
			e.PublicationDate.Format("2006-01-02"),
			string(e.Status),
			fmt.Sprintf("%d", e.TotalPages),
			fmt.Sprintf("%d", e.Views),
			e.Category,
		})
	}
	return r.render(pageData{
		Page:    "editions",
		Flash:   flash,
		Columns: []string{"ID", "Title", "Date", "Status", "Pages", "Views", "Category"},
		Rows:    rows,
	})
}

// Clips renders one edition's clip table.
func (r *Renderer) Clips(clips []domain.Clip, flash domain.Result) (string, error) {
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		rows = append(rows, []string{
			formatID(c.ID), c.ImageID, c.Title, c.Description, c.FilePath,
		})
	}
	return r.render(pageData{
		Page:    "clips",
		Flash:   flash,
		Columns: []string{"ID", "Image", "Title", "Description", "File"},
		Rows:    rows,
	})
}

// Settings renders the effective settings table, defaults included.
func (r *Renderer) Settings(list []domain.Setting, flash domain.Result) (string, error) {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.Key, s.Value, string(s.Type), s.Description})
	}
	return r.render(pageData{
		Page:    "settings",
		Flash:   flash,
		Columns: []string{"Key", "Value", "Type", "Description"},
		Rows:    rows,
	})
}

// Users renders the admin account table. Password hashes never appear.
func (r *Renderer) Users(users []domain.AdminUser, flash domain.Result) (string, error) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		status := "active"
		if !u.IsActive {
			status = "disabled"
		}
		lastLogin := ""
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			formatID(u.ID), u.Username, u.FullName, u.Email, string(u.Role), status, lastLogin,
		})
	}
	return r.render(pageData{
		Page:    "users",
		Flash:   flash,
		Columns: []string{"ID", "Username", "Name", "Email", "Role", "Status", "Last Login"},
		Rows:    rows,
	})
}

func formatID(id int64) string { return fmt.Sprintf("%d", id) }
