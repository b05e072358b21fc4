// Package project persists a workspace - worksheets plus graph views - as a
// zip archive holding a project.json manifest and one CSV payload per sheet.
package project

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plotloom/plotloom-cli/internal/csvio"
	"github.com/plotloom/plotloom-cli/internal/graph"
	"github.com/plotloom/plotloom-cli/internal/sheet"
	"github.com/plotloom/plotloom-cli/internal/utils"
)

const (
	manifestName = "project.json"

	// AppVersion is recorded in every saved manifest.
	AppVersion = "0.1.0"
)

// Geometry is a window rectangle, restored best-effort on load.
type Geometry struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Roles is the manifest form of a sheet's role assignments.
type Roles struct {
	X *int  `json:"x"`
	Y []int `json:"y"`
	Z *int  `json:"z"`
}

// WindowMeta is one window descriptor in the manifest.
type WindowMeta struct {
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Geometry  Geometry       `json:"geometry"`
	LongNames []string       `json:"long_names,omitempty"`
	Roles     *Roles         `json:"roles,omitempty"`
	CSV       string         `json:"csv,omitempty"`
	Sheet     string         `json:"sheet,omitempty"`
	Axes      *graph.Axes    `json:"axes,omitempty"`
	Overlays  []graph.Series `json:"overlays,omitempty"`
}

// Manifest is the project.json payload.
type Manifest struct {
	AppVersion string       `json:"app_version"`
	SavedAt    string       `json:"saved_at"`
	Windows    []WindowMeta `json:"windows"`
}

// WindowKind discriminates workspace windows.
type WindowKind string

const (
	KindWorksheet WindowKind = "worksheet"
	KindGraph     WindowKind = "graph"
)

// Window is one open view in the workspace: either a worksheet owning a
// sheet, or a graph bound to one.
type Window struct {
	UID      string
	Kind     WindowKind
	Title    string
	Geometry Geometry
	Sheet    *sheet.Sheet // worksheets only
	Graph    *graph.Graph // graphs only
	Source   string       // graphs: title of the source worksheet
}

// Workspace owns the ordered collection of windows in one project.
type Workspace struct {
	windows []*Window

	// Confirm, when set, is consulted before an interactive close. The
	// two-phase close protocol passes interactive=false during teardown so
	// no prompt fires then.
	Confirm func(title string) bool
}

// New returns an empty workspace.
func New() *Workspace { return &Workspace{} }

// Windows returns the open windows in order.
func (w *Workspace) Windows() []*Window { return w.windows }

// AddWorksheet registers a new worksheet window, de-duplicating its title.
func (w *Workspace) AddWorksheet(title string, s *sheet.Sheet) *Window {
	if title == "" {
		title = fmt.Sprintf("Book%d", w.count(KindWorksheet)+1)
	}
	win := &Window{
		UID:      uuid.NewString(),
		Kind:     KindWorksheet,
		Title:    w.uniqueTitle(title),
		Geometry: Geometry{X: 50, Y: 50, W: 820, H: 520},
		Sheet:    s,
	}
	w.windows = append(w.windows, win)
	return win
}

// AddGraph registers a graph window bound to the named worksheet.
func (w *Workspace) AddGraph(title, source string, g *graph.Graph) *Window {
	if title == "" {
		title = fmt.Sprintf("Graph%d", w.count(KindGraph)+1)
	}
	win := &Window{
		UID:      uuid.NewString(),
		Kind:     KindGraph,
		Title:    w.uniqueTitle(title),
		Geometry: Geometry{X: 60, Y: 60, W: 820, H: 520},
		Graph:    g,
		Source:   source,
	}
	w.windows = append(w.windows, win)
	return win
}

// Worksheet finds the worksheet window with the given title.
func (w *Workspace) Worksheet(title string) (*Window, error) {
	for _, win := range w.windows {
		if win.Kind == KindWorksheet && win.Title == title {
			return win, nil
		}
	}
	return nil, fmt.Errorf("no worksheet named %q", title)
}

// Graphs returns the graph windows bound to the named worksheet.
func (w *Workspace) Graphs(source string) []*Window {
	var out []*Window
	for _, win := range w.windows {
		if win.Kind == KindGraph && win.Source == source {
			out = append(out, win)
		}
	}
	return out
}

// Close removes a window. An interactive close consults the Confirm hook
// when one is set; teardown passes interactive=false and never prompts.
func (w *Workspace) Close(win *Window, interactive bool) bool {
	if interactive && w.Confirm != nil && !w.Confirm(win.Title) {
		return false
	}
	for i, cand := range w.windows {
		if cand == win {
			w.windows = append(w.windows[:i], w.windows[i+1:]...)
			return true
		}
	}
	return false
}

// CloseAll tears down every window without prompting.
func (w *Workspace) CloseAll() {
	for len(w.windows) > 0 {
		w.Close(w.windows[len(w.windows)-1], false)
	}
}

func (w *Workspace) count(kind WindowKind) int {
	n := 0
	for _, win := range w.windows {
		if win.Kind == kind {
			n++
		}
	}
	return n
}

func (w *Workspace) uniqueTitle(title string) string {
	taken := make(map[string]bool, len(w.windows))
	for _, win := range w.windows {
		taken[win.Title] = true
	}
	if !taken[title] {
		return title
	}
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s-%d", title, i)
		if !taken[cand] {
			return cand
		}
	}
}

// Save writes the workspace as a zip archive, atomically replacing any
// existing file at path.
func (w *Workspace) Save(path string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest := Manifest{
		AppVersion: AppVersion,
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	wsCount := 0
	for _, win := range w.windows {
		meta := WindowMeta{
			Type:     string(win.Kind),
			Title:    win.Title,
			Geometry: win.Geometry,
		}
		switch win.Kind {
		case KindWorksheet:
			wsCount++
			s := win.Sheet
			meta.LongNames = s.LongNames()
			meta.Roles = rolesMeta(s)
			meta.CSV = fmt.Sprintf("worksheets/W%02d-%s.csv", wsCount, sanitize(win.Title))
			entry, err := zw.Create(meta.CSV)
			if err != nil {
				return fmt.Errorf("create sheet entry: %w", err)
			}
			if err := csvio.Write(entry, s.DisplayNames(), s.Matrix()); err != nil {
				return fmt.Errorf("write sheet %s: %w", win.Title, err)
			}
		case KindGraph:
			meta.Sheet = win.Source
			if win.Graph != nil {
				axes := win.Graph.Axes()
				meta.Axes = &axes
				meta.Overlays = win.Graph.Overlays()
			}
		}
		manifest.Windows = append(manifest.Windows, meta)
	}

	entry, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	data, err := utils.PrettyJSON(manifest)
	if err != nil {
		return err
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// Load reconstructs a workspace from a saved archive. Data, long names, and
// roles are restored exactly; titles and geometry are best-effort with
// defaults.
func Load(path string) (*Workspace, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", path, err)
	}
	defer zr.Close()

	manifest, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, err
	}

	w := New()
	// Worksheets first so graphs can bind to them.
	for _, meta := range manifest.Windows {
		if meta.Type != string(KindWorksheet) {
			continue
		}
		s, err := loadSheet(&zr.Reader, meta)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", meta.Title, err)
		}
		win := w.AddWorksheet(meta.Title, s)
		win.Geometry = geometryOr(meta.Geometry, win.Geometry)
	}
	for _, meta := range manifest.Windows {
		if meta.Type != string(KindGraph) {
			continue
		}
		source := meta.Sheet
		if source == "" {
			if first := w.firstWorksheet(); first != nil {
				source = first.Title
			}
		}
		src, err := w.Worksheet(source)
		if err != nil {
			// A dangling graph is dropped rather than failing the load.
			continue
		}
		g := graph.New(src.Sheet)
		if meta.Axes != nil {
			g.SetAxes(*meta.Axes)
		}
		for _, ov := range meta.Overlays {
			g.AddOverlay(ov.Label, ov.X, ov.Y)
		}
		win := w.AddGraph(meta.Title, source, g)
		win.Geometry = geometryOr(meta.Geometry, win.Geometry)
	}
	return w, nil
}

func (w *Workspace) firstWorksheet() *Window {
	for _, win := range w.windows {
		if win.Kind == KindWorksheet {
			return win
		}
	}
	return nil
}

func readManifest(zr *zip.Reader) (*Manifest, error) {
	f := findEntry(zr, manifestName)
	if f == nil {
		return nil, errors.New("project.json missing from archive")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

func loadSheet(zr *zip.Reader, meta WindowMeta) (*sheet.Sheet, error) {
	var s *sheet.Sheet
	if meta.CSV != "" {
		f := findEntry(zr, meta.CSV)
		if f == nil {
			return nil, fmt.Errorf("archive entry %s missing", meta.CSV)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", meta.CSV, err)
		}
		_, data, rerr := csvio.ReadPayload(rc)
		rc.Close()
		if rerr != nil {
			return nil, rerr
		}
		s = sheet.FromRows(data)
	} else {
		s = sheet.New(1, 1)
	}

	if len(meta.LongNames) > 0 {
		s.SetLongNames(meta.LongNames)
	}
	if r := meta.Roles; r != nil {
		if r.X != nil {
			if err := s.SetRoleX(*r.X); err != nil {
				return nil, err
			}
		}
		if len(r.Y) > 0 {
			if err := s.AddRoleY(r.Y...); err != nil {
				return nil, err
			}
		}
		if r.Z != nil {
			if err := s.SetRoleZ(*r.Z); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func rolesMeta(s *sheet.Sheet) *Roles {
	r := &Roles{Y: s.RoleYs()}
	if x, ok := s.RoleX(); ok {
		r.X = &x
	}
	if z, ok := s.RoleZ(); ok {
		r.Z = &z
	}
	return r
}

func geometryOr(g, fallback Geometry) Geometry {
	if g.W <= 0 || g.H <= 0 {
		return fallback
	}
	return g
}

// sanitize strips filesystem-hostile characters from a title before it is
// used in an archive entry name.
func sanitize(title string) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, title)
	out = strings.TrimSpace(out)
	if out == "" {
		return "untitled"
	}
	return out
}
