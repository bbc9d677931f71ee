// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package gwc

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
)

// ErrInvalidConfig is returned when a document fails validation before
// it is sent.
var ErrInvalidConfig = errors.New("invalid GeoWebCache configuration")

// SeedType says what a seed request does to the tiles in its range.
type SeedType string

// Seed request types.
const (
	Seed     SeedType = "seed"
	Reseed   SeedType = "reseed"
	Truncate SeedType = "truncate"
)

// Bounds is a rectangle in the coordinates of some SRS or grid set.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) element(tag string) *etree.Element {
	e := etree.NewElement(tag)
	coords := e.CreateElement("coords")
	for _, v := range []float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		coords.CreateElement("double").SetText(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return e
}

func boundsFromElement(e *etree.Element) (*Bounds, error) {
	doubles := xmltree.Search(e, xmltree.Name("double"), 2)
	if len(doubles) != 4 {
		return nil, fmt.Errorf("%w: <%s> needs 4 coordinates, has %d", ErrInvalidConfig, e.Tag, len(doubles))
	}
	var v [4]float64
	for i, d := range doubles {
		f, err := strconv.ParseFloat(strings.TrimSpace(d.Text()), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s> coordinate %q", ErrInvalidConfig, e.Tag, d.Text())
		}
		v[i] = f
	}
	return &Bounds{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}

// SeedRequest asks GeoWebCache to seed, reseed, or truncate a range of
// zoom levels of a cached layer.
type SeedRequest struct {
	Layer       string
	SRS         int // EPSG code; zero leaves it to the grid set
	GridSetID   string
	Bounds      *Bounds
	ZoomStart   int
	ZoomStop    int
	Format      string // MIME type, e.g. image/png
	Type        SeedType
	ThreadCount int
	Parameters  map[string]string // parameter filter values, e.g. STYLES
}

// Validate checks the request before it is sent.
func (r *SeedRequest) Validate() error {
	if r.Layer == "" {
		return fmt.Errorf("%w: seed request needs a layer", ErrInvalidConfig)
	}
	switch r.Type {
	case Seed, Reseed, Truncate:
	default:
		return fmt.Errorf("%w: seed type %q", ErrInvalidConfig, r.Type)
	}
	if r.ZoomStart < 0 || r.ZoomStop < r.ZoomStart {
		return fmt.Errorf("%w: zoom range %d..%d", ErrInvalidConfig, r.ZoomStart, r.ZoomStop)
	}
	if r.ThreadCount < 0 {
		return fmt.Errorf("%w: negative thread count", ErrInvalidConfig)
	}
	if r.Bounds != nil && (r.Bounds.MinX > r.Bounds.MaxX || r.Bounds.MinY > r.Bounds.MaxY) {
		return fmt.Errorf("%w: inverted bounds", ErrInvalidConfig)
	}
	return nil
}

// Element encodes the request as <seedRequest>.
func (r *SeedRequest) Element() *etree.Element {
	root := etree.NewElement("seedRequest")
	xmltree.Set(root, "name", r.Layer)
	if r.Bounds != nil {
		root.AddChild(r.Bounds.element("bounds"))
	}
	if r.SRS != 0 {
		xmltree.Set(root, "srs/number", strconv.Itoa(r.SRS))
	}
	if r.GridSetID != "" {
		xmltree.Set(root, "gridSetId", r.GridSetID)
	}
	xmltree.Set(root, "zoomStart", strconv.Itoa(r.ZoomStart))
	xmltree.Set(root, "zoomStop", strconv.Itoa(r.ZoomStop))
	if r.Format != "" {
		xmltree.Set(root, "format", r.Format)
	}
	xmltree.Set(root, "type", string(r.Type))
	threads := r.ThreadCount
	if threads == 0 {
		threads = 1
	}
	xmltree.Set(root, "threadCount", strconv.Itoa(threads))
	if len(r.Parameters) > 0 {
		params := root.CreateElement("parameters")
		keys := make([]string, 0, len(r.Parameters))
		for k := range r.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry := params.CreateElement("entry")
			entry.CreateElement("string").SetText(k)
			entry.CreateElement("string").SetText(r.Parameters[k])
		}
	}
	return root
}

// XML validates and encodes the request.
func (r *SeedRequest) XML() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return xmltree.Write(r.Element(), 0)
}

// DecodeSeedRequest parses a <seedRequest> document.
func DecodeSeedRequest(data []byte) (*SeedRequest, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	r := &SeedRequest{}
	r.Layer, _ = xmltree.Get(root, "name")
	r.GridSetID, _ = xmltree.Get(root, "gridSetId")
	r.Format, _ = xmltree.Get(root, "format")
	t, _ := xmltree.Get(root, "type")
	r.Type = SeedType(t)
	for path, dst := range map[string]*int{
		"srs/number":  &r.SRS,
		"zoomStart":   &r.ZoomStart,
		"zoomStop":    &r.ZoomStop,
		"threadCount": &r.ThreadCount,
	} {
		n, err := optionalInt(root, path)
		if err != nil {
			return nil, err
		}
		if n != nil {
			*dst = *n
		}
	}
	if e := root.SelectElement("bounds"); e != nil {
		if r.Bounds, err = boundsFromElement(e); err != nil {
			return nil, err
		}
	}
	for _, entry := range xmltree.Search(root, xmltree.Name("entry"), 2) {
		kv := entry.SelectElements("string")
		if len(kv) == 2 {
			if r.Parameters == nil {
				r.Parameters = make(map[string]string)
			}
			r.Parameters[strings.TrimSpace(kv[0].Text())] = strings.TrimSpace(kv[1].Text())
		}
	}
	return r, nil
}

// TruncateLayerElement builds the mass truncation request that drops
// every cached tile of a layer.
func TruncateLayerElement(layer string) *etree.Element {
	root := etree.NewElement("truncateLayer")
	xmltree.Set(root, "layerName", layer)
	return root
}

// TaskStatus is the state of a running seed task.
type TaskStatus int

// Seed task states as reported by GeoWebCache.
const (
	Aborted TaskStatus = -1
	Pending TaskStatus = 0
	Running TaskStatus = 1
	Done    TaskStatus = 2
)

func (s TaskStatus) String() string {
	switch s {
	case Aborted:
		return "aborted"
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

// SeedTask is one entry of the seed status report.
type SeedTask struct {
	TilesDone     int64
	TilesTotal    int64 // -1 if not yet known
	TimeRemaining int64 // seconds, -1 if not yet known
	ID            int64
	Status        TaskStatus
}

// Active reports whether the task is still pending or running.
func (t SeedTask) Active() bool {
	return t.Status == Pending || t.Status == Running
}

type seedStatusJSON struct {
	Tasks [][]int64 `json:"long-array-array"`
}

// DecodeSeedStatus parses the JSON status report returned by
// GET seed/{layer}.json or seed.json.  Each task is an array of
// [tiles done, tiles total, seconds remaining, task id, status]; older
// servers omit the last two.
func DecodeSeedStatus(data []byte) ([]SeedTask, error) {
	var doc seedStatusJSON
	if err := restdata.DecodeJSON(bytes.NewReader(data), &doc); err != nil {
		return nil, err
	}
	tasks := make([]SeedTask, 0, len(doc.Tasks))
	for _, row := range doc.Tasks {
		if len(row) < 3 {
			return nil, fmt.Errorf("%w: seed status row %v", ErrInvalidConfig, row)
		}
		task := SeedTask{
			TilesDone:     row[0],
			TilesTotal:    row[1],
			TimeRemaining: row[2],
			ID:            -1,
			Status:        Running,
		}
		if len(row) >= 5 {
			task.ID = row[3]
			task.Status = TaskStatus(row[4])
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// EncodeSeedStatus is the inverse of DecodeSeedStatus.
func EncodeSeedStatus(tasks []SeedTask) ([]byte, error) {
	doc := seedStatusJSON{Tasks: make([][]int64, len(tasks))}
	for i, t := range tasks {
		doc.Tasks[i] = []int64{t.TilesDone, t.TilesTotal, t.TimeRemaining, t.ID, int64(t.Status)}
	}
	var buf bytes.Buffer
	err := restdata.EncodeJSON(&buf, doc)
	return buf.Bytes(), err
}
