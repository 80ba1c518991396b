package generate

import "encoding/json"

// WorkflowSnapshot is the state of the multi-step generation flow in the UI:
// the step the user is on, the inputs they selected and artifacts generated
// but not yet saved. The manager stores it verbatim and never interprets the
// artifact lists.
type WorkflowSnapshot struct {
	ProjectID               string            `json:"projectId"`
	CurrentStep             int               `json:"currentStep"`
	TestTypes               []string          `json:"testTypes"`
	UserRequirements        string            `json:"userRequirements"`
	ExistingDocuments       []json.RawMessage `json:"existingDocuments"`
	ExistingFunctionPoints  []json.RawMessage `json:"existingFunctionPoints"`
	GeneratedFunctionPoints []json.RawMessage `json:"generatedFunctionPoints"`
	GeneratedTestCases      []json.RawMessage `json:"generatedTestCases"`
	SavedFpIDs              []string          `json:"savedFpIds"`
	UploadedDocs            []json.RawMessage `json:"uploadedDocs"`
	FileList                []json.RawMessage `json:"fileList"`
}

// DefaultSnapshot returns the initial workflow state.
func DefaultSnapshot() WorkflowSnapshot {
	return WorkflowSnapshot{
		TestTypes:               []string{"functional"},
		ExistingDocuments:       []json.RawMessage{},
		ExistingFunctionPoints:  []json.RawMessage{},
		GeneratedFunctionPoints: []json.RawMessage{},
		GeneratedTestCases:      []json.RawMessage{},
		SavedFpIDs:              []string{},
		UploadedDocs:            []json.RawMessage{},
		FileList:                []json.RawMessage{},
	}
}

// SnapshotPatch is a partial WorkflowSnapshot. Nil fields are left unchanged;
// set fields replace the stored field wholesale. A non-nil empty slice clears
// a list. Decoding JSON into a patch follows the same rule: absent keys stay
// nil, "[]" becomes an empty slice.
type SnapshotPatch struct {
	ProjectID               *string           `json:"projectId,omitempty"`
	CurrentStep             *int              `json:"currentStep,omitempty" validate:"omitempty,gte=0"`
	TestTypes               []string          `json:"testTypes,omitempty"`
	UserRequirements        *string           `json:"userRequirements,omitempty"`
	ExistingDocuments       []json.RawMessage `json:"existingDocuments,omitempty"`
	ExistingFunctionPoints  []json.RawMessage `json:"existingFunctionPoints,omitempty"`
	GeneratedFunctionPoints []json.RawMessage `json:"generatedFunctionPoints,omitempty"`
	GeneratedTestCases      []json.RawMessage `json:"generatedTestCases,omitempty"`
	SavedFpIDs              []string          `json:"savedFpIds,omitempty"`
	UploadedDocs            []json.RawMessage `json:"uploadedDocs,omitempty"`
	FileList                []json.RawMessage `json:"fileList,omitempty"`
}

// applyTo shallow-merges the set fields of p into s.
func (p SnapshotPatch) applyTo(s *WorkflowSnapshot) {
	if p.ProjectID != nil {
		s.ProjectID = *p.ProjectID
	}
	if p.CurrentStep != nil {
		s.CurrentStep = *p.CurrentStep
	}
	if p.TestTypes != nil {
		s.TestTypes = cloneStrings(p.TestTypes)
	}
	if p.UserRequirements != nil {
		s.UserRequirements = *p.UserRequirements
	}
	if p.ExistingDocuments != nil {
		s.ExistingDocuments = cloneRaw(p.ExistingDocuments)
	}
	if p.ExistingFunctionPoints != nil {
		s.ExistingFunctionPoints = cloneRaw(p.ExistingFunctionPoints)
	}
	if p.GeneratedFunctionPoints != nil {
		s.GeneratedFunctionPoints = cloneRaw(p.GeneratedFunctionPoints)
	}
	if p.GeneratedTestCases != nil {
		s.GeneratedTestCases = cloneRaw(p.GeneratedTestCases)
	}
	if p.SavedFpIDs != nil {
		s.SavedFpIDs = cloneStrings(p.SavedFpIDs)
	}
	if p.UploadedDocs != nil {
		s.UploadedDocs = cloneRaw(p.UploadedDocs)
	}
	if p.FileList != nil {
		s.FileList = cloneRaw(p.FileList)
	}
}

// clone returns a deep copy of s.
func (s WorkflowSnapshot) clone() WorkflowSnapshot {
	out := s
	out.TestTypes = cloneStrings(s.TestTypes)
	out.ExistingDocuments = cloneRaw(s.ExistingDocuments)
	out.ExistingFunctionPoints = cloneRaw(s.ExistingFunctionPoints)
	out.GeneratedFunctionPoints = cloneRaw(s.GeneratedFunctionPoints)
	out.GeneratedTestCases = cloneRaw(s.GeneratedTestCases)
	out.SavedFpIDs = cloneStrings(s.SavedFpIDs)
	out.UploadedDocs = cloneRaw(s.UploadedDocs)
	out.FileList = cloneRaw(s.FileList)
	return out
}

// normalize replaces nil lists, which a stored null can produce, with empty ones.
func (s *WorkflowSnapshot) normalize() {
	if s.TestTypes == nil {
		s.TestTypes = []string{}
	}
	if s.SavedFpIDs == nil {
		s.SavedFpIDs = []string{}
	}
	for _, list := range []*[]json.RawMessage{
		&s.ExistingDocuments,
		&s.ExistingFunctionPoints,
		&s.GeneratedFunctionPoints,
		&s.GeneratedTestCases,
		&s.UploadedDocs,
		&s.FileList,
	} {
		if *list == nil {
			*list = []json.RawMessage{}
		}
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

func cloneRaw(in []json.RawMessage) []json.RawMessage {
	if in == nil {
		return nil
	}
	out := make([]json.RawMessage, len(in))
	for i, item := range in {
		out[i] = append(json.RawMessage(nil), item...)
	}
	return out
}
