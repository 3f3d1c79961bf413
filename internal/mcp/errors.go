package mcp

import (
	"errors"

	"github.com/yourusername/osrs-mcp/internal/quest"
	"github.com/yourusername/osrs-mcp/internal/tools"
	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// Error codes returned to MCP clients alongside MediaWiki's own codes.
const (
	CodeSectionNotFound  = "section_not_found"
	CodeInvalidInput     = "invalid_input"
	CodeTemplateNotFound = "template_not_found"
	CodeInfoKeyNotFound  = "info_key_not_found"
	CodeImageNotFound    = "image_not_found"
	CodeUpstream         = "upstream_error"
	CodeInternal         = "internal_error"
)

// InputError reports malformed or missing tool arguments
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// ErrorResponse represents a structured error response for MCP
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// FormatError converts known error types to a structured ErrorResponse
func FormatError(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return FormatErrorString(CodeInvalidInput, inputErr.Message)
	}

	var stageErr *quest.StageError
	if errors.As(err, &stageErr) {
		return formatStageError(stageErr)
	}

	var apiErr *wiki.APIError
	if errors.As(err, &apiErr) {
		return formatAPIError(apiErr)
	}

	var sectionErr *tools.SectionNotFoundError
	if errors.As(err, &sectionErr) {
		return formatSectionNotFoundError(sectionErr)
	}

	var keyErr *tools.InfoKeyNotFoundError
	if errors.As(err, &keyErr) {
		return formatInfoKeyNotFoundError(keyErr)
	}

	switch {
	case errors.Is(err, tools.ErrNoPageImage):
		return &ErrorResponse{
			Error:   CodeImageNotFound,
			Message: err.Error(),
			Hint:    "Not every page has a lead image. Try the item or NPC page itself.",
		}
	case errors.Is(err, quest.ErrEmptyName):
		return FormatErrorString(CodeInvalidInput, err.Error())
	case errors.Is(err, wiki.ErrEmptyResponse), errors.Is(err, wiki.ErrNoAPIEndpoint):
		return &ErrorResponse{
			Error:   CodeUpstream,
			Message: err.Error(),
			Hint:    "The OSRS Wiki returned an unexpected response. Try again shortly.",
		}
	}

	return FormatErrorString(CodeInternal, err.Error())
}

func formatAPIError(err *wiki.APIError) *ErrorResponse {
	resp := &ErrorResponse{
		Error:   err.Code,
		Message: err.Message,
	}

	switch err.Code {
	case "missingtitle":
		resp.Hint = "The page doesn't exist. Try osrs_wiki_search to find the correct title."
	case "nosuchsection":
		resp.Hint = "The section doesn't exist. Call osrs_wiki_page_outline to get fresh section indices."
	case "maxlag", "ratelimited":
		resp.Hint = "The wiki server is experiencing high load. Wait a moment and try again."
	}

	return resp
}

func formatSectionNotFoundError(err *tools.SectionNotFoundError) *ErrorResponse {
	return &ErrorResponse{
		Error:   CodeSectionNotFound,
		Message: err.Error(),
		Hint:    "Call osrs_wiki_page_outline to get fresh section indices.",
		Details: map[string]any{
			"section_index":      err.SectionIndex,
			"available_sections": err.AvailableSections,
		},
	}
}

func formatInfoKeyNotFoundError(err *tools.InfoKeyNotFoundError) *ErrorResponse {
	resp := &ErrorResponse{
		Error:   CodeInfoKeyNotFound,
		Message: err.Error(),
		Details: map[string]any{
			"key":            err.Key,
			"available_keys": err.AvailableKeys,
		},
	}
	if err.InfoboxType == "" {
		resp.Hint = "The page has no infobox. Use osrs_wiki_page_outline or osrs_wiki_page_content instead."
	} else {
		resp.Hint = "Use one of available_keys."
	}
	return resp
}

func formatStageError(err *quest.StageError) *ErrorResponse {
	details := map[string]any{
		"quest": err.Quest,
		"stage": err.Stage,
	}

	var apiErr *wiki.APIError
	switch {
	case errors.As(err, &apiErr):
		resp := formatAPIError(apiErr)
		resp.Details = details
		return resp
	case errors.Is(err, quest.ErrTemplateNotFound):
		return &ErrorResponse{
			Error:   CodeTemplateNotFound,
			Message: err.Error(),
			Hint:    "The page is not a quest page. Try osrs_wiki_search or osrs_wiki_category with 'Quests'.",
			Details: details,
		}
	case err.Stage == quest.StageFetch, err.Stage == quest.StageExtract:
		return &ErrorResponse{
			Error:   CodeUpstream,
			Message: err.Error(),
			Details: details,
		}
	}

	return &ErrorResponse{
		Error:   CodeInternal,
		Message: err.Error(),
		Details: details,
	}
}

// FormatErrorString creates an error response from a simple string
func FormatErrorString(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   code,
		Message: message,
	}
}
