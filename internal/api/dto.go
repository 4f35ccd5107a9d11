package api

import (
	"path/filepath"

	"github.com/samber/lo"

	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/noteservice"
)

// NoteItem is one entry of a listing or search response.
type NoteItem struct {
	Index    int      `json:"index" example:"1" validate:"required"`
	Title    string   `json:"title" example:"Powershell Profile" validate:"required"`
	Tags     []string `json:"tags" example:"ps1,shell"`
	Notebook string   `json:"notebook" example:"/Tech/Public" validate:"required"`
	Created  string   `json:"created" example:"2021-06-01 09:30:00" validate:"required"`
	Updated  string   `json:"updated" example:"2022-01-10 18:02:11" validate:"required"`
	Path     string   `json:"path" example:"/home/me/.donno/repo/20210601-093000.md" validate:"required"`
}

// NoteDetail is a single resolved note including its body.
type NoteDetail struct {
	NoteItem
	Body string `json:"body" example:"Set-Alias ll Get-ChildItem"`
}

// ListResponse wraps a listing or search. Index values address notes in
// GET /notes/{index} until the next listing.
type ListResponse struct {
	Notes      []NoteItem `json:"notes" validate:"required"`
	Generation int64      `json:"generation" example:"12" validate:"required"`
	Skipped    []string   `json:"skipped,omitempty" example:"broken.md"`
}

// NotebooksResponse lists the notebooks in use.
type NotebooksResponse struct {
	Notebooks []noteservice.NotebookCount `json:"notebooks" validate:"required"`
}

func toItem(n models.Note, index int) NoteItem {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteItem{
		Index:    index,
		Title:    n.Title,
		Tags:     tags,
		Notebook: n.Notebook,
		Created:  models.FormatTime(n.Created),
		Updated:  models.FormatTime(n.Updated),
		Path:     n.Path,
	}
}

func toDetail(n models.Note, index int) NoteDetail {
	return NoteDetail{NoteItem: toItem(n, index), Body: n.Body}
}

func toListResponse(res *noteservice.Result) ListResponse {
	return ListResponse{
		Notes: lo.Map(res.Notes, func(n models.Note, i int) NoteItem {
			return toItem(n, i+1)
		}),
		Generation: res.Listing.Generation,
		Skipped: lo.Map(res.Failed, func(f noteservice.FileError, _ int) string {
			return filepath.Base(f.Path)
		}),
	}
}
