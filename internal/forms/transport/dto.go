package transport

import "github.com/google/uuid"

// CreateFieldRequest declares one field of an address group.
type CreateFieldRequest struct {
	Role  string `json:"role" validate:"required,oneof=postalcode number street city country"`
	Value string `json:"value"`
}

// CreateGroupRequest declares one address group of a form session.
type CreateGroupRequest struct {
	Name   string               `json:"name" validate:"required,min=1,max=100"`
	Fields []CreateFieldRequest `json:"fields" validate:"required,min=1,dive"`
}

// CreateFormRequest is the request body for opening a form session.
type CreateFormRequest struct {
	Groups []CreateGroupRequest `json:"groups" validate:"required,min=1,dive"`
}

// EditFieldRequest is the request body for reporting a field edit.
type EditFieldRequest struct {
	Group string `json:"group" validate:"required"`
	Role  string `json:"role" validate:"required,oneof=postalcode number street city country"`
	Value string `json:"value"`
}

// DecisionRequest is the request body for answering a suggestion prompt.
type DecisionRequest struct {
	PromptID uuid.UUID `json:"promptId" validate:"required"`
	Accept   *bool     `json:"accept" validate:"required"`
}

// FieldView is the current state of a single field.
type FieldView struct {
	Role  string `json:"role"`
	Value string `json:"value"`
}

// GroupView is the current state of an address group.
type GroupView struct {
	Name   string      `json:"name"`
	Fields []FieldView `json:"fields"`
}

// FormResponse is the representation of a form session.
type FormResponse struct {
	ID     uuid.UUID   `json:"id"`
	Groups []GroupView `json:"groups"`
}
