// Package bcf reads and writes BIM Collaboration Format 3.0 issue packages
// (.bcfzip).
//
// An archive holds one markup.bcf per topic in a folder named after the
// topic GUID, plus optional viewpoint files next to it:
//
//	bcf.version
//	project.bcfp
//	extensions.xml
//	<topic-guid>/markup.bcf
//	<topic-guid>/<viewpoint-guid>.bcfv
package bcf

import (
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/ifclint/pkg/core"
)

// Version is the BCF version written to bcf.version.
const Version = "3.0"

// Default topic statuses and priorities advertised in extensions.xml.
var (
	DefaultStatuses   = []string{"Open", "Closed"}
	DefaultPriorities = []string{"High", "Normal", "Low"}
)

// Archive is an in-memory BCF package.
type Archive struct {
	Version string
	Project Project
	Topics  []Topic
}

// Project identifies the project the issues belong to.
type Project struct {
	ID   string
	Name string
}

// Topic is one issue.
type Topic struct {
	GUID        string
	Type        string
	Status      string
	Title       string
	Priority    string
	Labels      []string
	Created     time.Time
	Author      string
	Description string
	Comments    []Comment
	Viewpoints  []Viewpoint
}

// Comment is a message attached to a topic, optionally tied to a viewpoint.
type Comment struct {
	GUID      string
	Date      time.Time
	Author    string
	Text      string
	Viewpoint string // viewpoint GUID, empty when none
}

// Viewpoint selects IFC elements and positions a perspective camera.
type Viewpoint struct {
	GUID     string
	Selected []string // IFC GlobalIds
	Camera   *Camera
}

// Camera is a perspective camera. FieldOfView is in degrees.
type Camera struct {
	Position    core.Vec3
	Direction   core.Vec3
	Up          core.Vec3
	FieldOfView float64
	AspectRatio float64
}

// NewArchive creates an empty archive for the named project.
func NewArchive(projectName string) *Archive {
	return &Archive{
		Version: Version,
		Project: Project{ID: NewGUID(), Name: projectName},
	}
}

// NewGUID returns a new random GUID in canonical form.
func NewGUID() string { return uuid.NewString() }

// AddTopic appends an open topic whose description is also its first
// comment, and returns it for further decoration.
func (a *Archive) AddTopic(title, description, author, topicType string, at time.Time) *Topic {
	at = at.UTC().Truncate(time.Second)
	a.Topics = append(a.Topics, Topic{
		GUID:        NewGUID(),
		Type:        topicType,
		Status:      "Open",
		Title:       title,
		Created:     at,
		Author:      author,
		Description: description,
		Comments: []Comment{{
			GUID:   NewGUID(),
			Date:   at,
			Author: author,
			Text:   description,
		}},
	})
	return &a.Topics[len(a.Topics)-1]
}

// AddViewpoint attaches a viewpoint selecting guids, links it from the
// topic's first comment, and returns its GUID.
func (t *Topic) AddViewpoint(cam *Camera, guids ...string) string {
	vp := Viewpoint{GUID: NewGUID(), Selected: guids, Camera: cam}
	t.Viewpoints = append(t.Viewpoints, vp)
	if len(t.Comments) > 0 && t.Comments[0].Viewpoint == "" {
		t.Comments[0].Viewpoint = vp.GUID
	}
	return vp.GUID
}

// CameraFor returns a camera looking at the box centre from just beyond
// its maximum corner, with Z up.
func CameraFor(box core.BoundingBox) *Camera {
	pos := box.Max.Scale(1.04)
	return &Camera{
		Position:    pos,
		Direction:   box.Center().Sub(pos),
		Up:          core.Vec3{0, 0, 1},
		FieldOfView: 60,
		AspectRatio: 1,
	}
}

// TopicTypes returns the distinct topic types in first-use order.
func (a *Archive) TopicTypes() []string {
	return distinct(len(a.Topics), func(i int) string { return a.Topics[i].Type })
}

// Authors returns the distinct topic authors in first-use order.
func (a *Archive) Authors() []string {
	return distinct(len(a.Topics), func(i int) string { return a.Topics[i].Author })
}

func distinct(n int, at func(int) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < n; i++ {
		s := at(i)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
