package models

// Project is a saved editor workspace. It is embedded in its owner's User
// document and never shared between users.
type Project struct {
	ProjectID   string `bson:"projectId" json:"projectId"`
	ProjectName string `bson:"projectName" json:"projectName"`
	HTML        string `bson:"html" json:"html"`
	CSS         string `bson:"css" json:"css"`
	JS          string `bson:"js" json:"js"`
}

// ProjectMatch describes which projects to remove. Empty fields match anything.
type ProjectMatch struct {
	ProjectID   string `json:"projectId,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	HTML        string `json:"html,omitempty"`
	CSS         string `json:"css,omitempty"`
	JS          string `json:"js,omitempty"`
}

// IsEmpty reports whether the descriptor has no field set.
func (m ProjectMatch) IsEmpty() bool {
	return m == ProjectMatch{}
}

// Matches reports whether p equals every field set on the descriptor.
func (m ProjectMatch) Matches(p Project) bool {
	if m.ProjectID != "" && m.ProjectID != p.ProjectID {
		return false
	}
	if m.ProjectName != "" && m.ProjectName != p.ProjectName {
		return false
	}
	if m.HTML != "" && m.HTML != p.HTML {
		return false
	}
	if m.CSS != "" && m.CSS != p.CSS {
		return false
	}
	if m.JS != "" && m.JS != p.JS {
		return false
	}
	return true
}
