package quest

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrEmptyName is returned before any network call when the quest name is blank.
	ErrEmptyName = eris.New("quest name cannot be empty")
	// ErrTemplateNotFound marks a page missing one of the anchor templates.
	ErrTemplateNotFound = eris.New("template not found")
	// ErrMalformedTree marks a parse tree that is not well-formed XML.
	ErrMalformedTree = eris.New("malformed parse tree")
)

// Stages of an assembly, reported on failure.
const (
	StageFetch         = "fetch"
	StageExtract       = "extract"
	StageLocateInfobox = "locate_infobox"
	StageLocateDetails = "locate_details"
	StageLocateRewards = "locate_rewards"
	StageInfobox       = "infobox"
	StageRequirements  = "requirements"
	StageRecommended   = "recommended"
	StageKills         = "kills"
	StageRewards       = "rewards"
)

// StageError is a terminal assembly failure. Its message carries only the
// quest name, the stage and the cause.
type StageError struct {
	Quest string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("quest %q failed at %s: %v", e.Quest, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

