package domain

// WrapperStatus represents whether a project wrapper is live in the
// user's project index.
type WrapperStatus string

const (
	// WrapperStatusActive means the project appears in the user's list.
	WrapperStatusActive WrapperStatus = "ACTIVE"
	// WrapperStatusInactive means the entry is retained but hidden,
	// ready to be reactivated on rejoin.
	WrapperStatusInactive WrapperStatus = "INACTIVE"
)

// ProjectWrapper is a denormalized per-user index entry pointing at a
// project, letting a user's client enumerate its projects without a
// fan-out query. A user holds an active wrapper for a project iff they
// hold an active membership in it; the pairing is maintained by
// explicit writes in the join/leave flows, not by the storage layer.
type ProjectWrapper struct {
	Base // ID is the project ID

	// Snapshot of the project taken at join time.
	ProjectName     string `json:"project_name"`
	ProjectImageURL string `json:"project_image_url,omitempty"`

	Status WrapperStatus `json:"status"`
}

// NewProjectWrapper creates an active wrapper for the given project.
func NewProjectWrapper(project *Project) *ProjectWrapper {
	w := &ProjectWrapper{
		Base:            Base{ID: project.ID},
		ProjectName:     project.Name,
		ProjectImageURL: project.ImageURL,
		Status:          WrapperStatusActive,
	}
	w.InitTimestamps()
	return w
}

// IsActive returns true if the wrapper is live in the user's index.
func (w *ProjectWrapper) IsActive() bool {
	return w.Status == WrapperStatusActive && !w.IsDeleted()
}

// Activate reactivates an inactive wrapper and refreshes its project
// snapshot.
func (w *ProjectWrapper) Activate(project *Project) {
	w.Status = WrapperStatusActive
	w.ProjectName = project.Name
	w.ProjectImageURL = project.ImageURL
	w.DeletedAt = nil
	w.Touch()
}

// Deactivate hides the wrapper from the user's index.
func (w *ProjectWrapper) Deactivate() {
	w.Status = WrapperStatusInactive
	w.Touch()
}
