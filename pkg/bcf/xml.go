package bcf

import (
	"encoding/xml"
	"time"

	"github.com/leapstack-labs/ifclint/pkg/core"
)

type xmlVersion struct {
	XMLName         xml.Name `xml:"Version"`
	VersionID       string   `xml:"VersionId,attr"`
	DetailedVersion string   `xml:"DetailedVersion,omitempty"`
}

type xmlProjectInfo struct {
	XMLName xml.Name   `xml:"ProjectInfo"`
	Project xmlProject `xml:"Project"`
}

type xmlProject struct {
	ProjectID string `xml:"ProjectId,attr"`
	Name      string `xml:"Name,omitempty"`
}

type xmlExtensions struct {
	XMLName       xml.Name `xml:"Extensions"`
	TopicTypes    []string `xml:"TopicTypes>TopicType"`
	TopicStatuses []string `xml:"TopicStatuses>TopicStatus"`
	Priorities    []string `xml:"Priorities>Priority"`
	TopicLabels   []string `xml:"TopicLabels>TopicLabel"`
	Users         []string `xml:"Users>User"`
}

type xmlMarkup struct {
	XMLName xml.Name `xml:"Markup"`
	Topic   xmlTopic `xml:"Topic"`
}

type xmlTopic struct {
	GUID           string         `xml:"Guid,attr"`
	TopicType      string         `xml:"TopicType,attr,omitempty"`
	TopicStatus    string         `xml:"TopicStatus,attr,omitempty"`
	Title          string         `xml:"Title"`
	Priority       string         `xml:"Priority,omitempty"`
	Labels         []string       `xml:"Labels>Label"`
	CreationDate   time.Time      `xml:"CreationDate"`
	CreationAuthor string         `xml:"CreationAuthor"`
	Description    string         `xml:"Description,omitempty"`
	Comments       []xmlComment   `xml:"Comments>Comment"`
	Viewpoints     []xmlViewPoint `xml:"Viewpoints>ViewPoint"`
}

type xmlComment struct {
	GUID      string    `xml:"Guid,attr"`
	Date      time.Time `xml:"Date"`
	Author    string    `xml:"Author"`
	Comment   string    `xml:"Comment"`
	Viewpoint *xmlRef   `xml:"Viewpoint"`
}

type xmlRef struct {
	GUID string `xml:"Guid,attr"`
}

type xmlViewPoint struct {
	GUID      string `xml:"Guid,attr"`
	Viewpoint string `xml:"Viewpoint"`
}

type xmlVisualizationInfo struct {
	XMLName           xml.Name              `xml:"VisualizationInfo"`
	GUID              string                `xml:"Guid,attr"`
	Components        *xmlComponents        `xml:"Components"`
	PerspectiveCamera *xmlPerspectiveCamera `xml:"PerspectiveCamera"`
}

type xmlComponents struct {
	Selection  []xmlComponent `xml:"Selection>Component"`
	Visibility xmlVisibility  `xml:"Visibility"`
}

type xmlComponent struct {
	IfcGUID string `xml:"IfcGuid,attr"`
}

type xmlVisibility struct {
	DefaultVisibility bool `xml:"DefaultVisibility,attr"`
}

type xmlPoint struct {
	X float64 `xml:"X"`
	Y float64 `xml:"Y"`
	Z float64 `xml:"Z"`
}

type xmlPerspectiveCamera struct {
	CameraViewPoint xmlPoint `xml:"CameraViewPoint"`
	CameraDirection xmlPoint `xml:"CameraDirection"`
	CameraUpVector  xmlPoint `xml:"CameraUpVector"`
	FieldOfView     float64  `xml:"FieldOfView"`
	AspectRatio     float64  `xml:"AspectRatio"`
}

func toPoint(v core.Vec3) xmlPoint   { return xmlPoint{X: v[0], Y: v[1], Z: v[2]} }
func fromPoint(p xmlPoint) core.Vec3 { return core.Vec3{p.X, p.Y, p.Z} }
