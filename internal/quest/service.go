// Package quest assembles structured quest records from OSRS Wiki parse trees.
package quest

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/osrs-mcp/internal/logging"
	"github.com/yourusername/osrs-mcp/internal/metrics"
	"github.com/yourusername/osrs-mcp/internal/tracing"
	"github.com/yourusername/osrs-mcp/internal/wikitext"
)

// TreeFetcher returns the XML parse tree of a wiki page.
type TreeFetcher interface {
	ParseTree(ctx context.Context, title string) (string, error)
}

// Options configures a Service.
type Options struct {
	Fetcher         TreeFetcher
	Logger          logrus.FieldLogger
	NonItemKeywords []string
}

// Service builds Info records. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	fetcher    TreeFetcher
	logger     *logrus.Entry
	exclusions wikitext.Exclusions
}

// NewService creates a quest service. A nil keyword list falls back to the
// built-in exclusions.
func NewService(opts Options) *Service {
	keywords := opts.NonItemKeywords
	if keywords == nil {
		keywords = wikitext.DefaultNonItemKeywords
	}

	return &Service{
		fetcher:    opts.Fetcher,
		logger:     logging.Component(opts.Logger, "quest"),
		exclusions: wikitext.Exclusions(keywords),
	}
}

var fileLinkPattern = regexp.MustCompile(`(?i)\[\[(?:File|Image):([^\]|]+)`)

// GetQuestInfo fetches the quest page once and assembles its record. Missing
// anchor templates, upstream failures and malformed trees are terminal and
// reported as *StageError; absent optional fields leave their defaults.
func (s *Service) GetQuestInfo(ctx context.Context, name string) (*Info, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	ctx, span := tracing.StartSpan(ctx, "quest.GetQuestInfo")
	defer span.End()

	log := s.logger.WithField("quest", name)

	fail := func(stage string, err error) error {
		stageErr := &StageError{Quest: name, Stage: stage, Err: err}
		metrics.RecordQuestFailure(stage)
		tracing.AddQuestAttributes(span, name, stage)
		tracing.RecordError(span, stageErr)
		log.WithFields(logrus.Fields{
			"stage": stage,
			"error": err.Error(),
		}).Error("quest extraction failed")
		return stageErr
	}

	if err := ctx.Err(); err != nil {
		return nil, fail(StageFetch, eris.Wrap(err, "request canceled"))
	}

	tree, err := s.fetcher.ParseTree(ctx, name)
	if err != nil {
		return nil, fail(StageFetch, err)
	}

	templates, err := wikitext.ParseTemplates(strings.NewReader(tree))
	if err != nil {
		log.WithField("error", err.Error()).Debug("parse tree rejected by decoder")
		return nil, fail(StageExtract, ErrMalformedTree)
	}

	infobox, ok := wikitext.FindTemplate(templates, InfoboxTemplate)
	if !ok {
		return nil, fail(StageLocateInfobox, eris.Wrap(ErrTemplateNotFound, InfoboxTemplate))
	}
	details, ok := wikitext.FindTemplate(templates, DetailsTemplate)
	if !ok {
		return nil, fail(StageLocateDetails, eris.Wrap(ErrTemplateNotFound, DetailsTemplate))
	}
	rewards, ok := wikitext.FindTemplate(templates, RewardsTemplate)
	if !ok {
		return nil, fail(StageLocateRewards, eris.Wrap(ErrTemplateNotFound, RewardsTemplate))
	}

	info := newInfo(name)
	steps := []struct {
		stage string
		run   func(*Info, *logrus.Entry)
	}{
		{StageInfobox, func(info *Info, log *logrus.Entry) { applyScalars(info, infobox, details, log) }},
		{StageRequirements, func(info *Info, log *logrus.Entry) { s.applyRequirements(info, details, log) }},
		{StageRecommended, func(info *Info, log *logrus.Entry) { s.applyRecommended(info, details, log) }},
		{StageKills, func(info *Info, log *logrus.Entry) { applyKills(info, details, log) }},
		{StageRewards, func(info *Info, log *logrus.Entry) { applyRewards(info, rewards, log) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fail(step.stage, eris.Wrap(err, "request canceled"))
		}
		stageLog := log.WithField("stage", step.stage)
		step.run(info, stageLog)
		stageLog.Info("stage complete")
	}

	return info, nil
}

// fieldSource returns the wikitext of a template parameter, or "" with a
// debug entry when the field is absent.
func fieldSource(tpl wikitext.Template, field string, log *logrus.Entry) string {
	src := strings.TrimSpace(wikitext.Source(tpl.Raw(field)))
	if src == "" {
		log.WithField("field", field).Debug("field absent")
	}
	return src
}

func cleanField(tpl wikitext.Template, field string) string {
	return wikitext.CleanMarkup(wikitext.Source(tpl.Raw(field)))
}

func applyScalars(info *Info, infobox, details wikitext.Template, log *logrus.Entry) {
	if name := cleanField(infobox, "name"); name != "" {
		info.Name = name
	}
	if number, ok := infobox.IntParam("number"); ok {
		info.QuestNumber = number
	}
	if m := fileLinkPattern.FindStringSubmatch(infobox.Param("image")); m != nil {
		info.FeaturedImageName = strings.TrimSpace(m[1])
	}

	if release, ok := wikitext.ParseRelease(infobox.Param("release")); ok {
		info.ReleaseDay = release.Day
		info.ReleaseMonth = release.Month
		info.ReleaseYear = release.Year
	} else {
		log.WithField("field", "release").Debug("release date not recognized")
	}

	info.Update = cleanField(infobox, "update")
	if members, ok := infobox.BoolParam("members"); ok {
		info.MembersOnly = members
	}
	info.Series = cleanField(infobox, "series")
	info.Developer = cleanField(infobox, "developer")
	info.Aka = cleanField(infobox, "aka")

	info.Difficulty = cleanField(details, "difficulty")
	info.Length = cleanField(details, "length")
	info.StartingPoint = cleanField(details, "start")
	info.StartMap = cleanField(details, "startmap")

	if giver, ok := wikitext.ParseQuestGiver(details.Param("start")); ok {
		info.QuestGiver = giver
	} else {
		log.WithField("field", "start").Debug("quest giver not recognized")
	}
}

func (s *Service) applyRequirements(info *Info, details wikitext.Template, log *logrus.Entry) {
	if src := fieldSource(details, "requirements", log); src != "" {
		info.RequiredQuests = wikitext.ParseQuestPrerequisites(src)
		info.RequiredSkills = wikitext.ParseSkillLevels(
			wikitext.ExtractFragment(details.Raw("requirements")),
			wikitext.RequiredSkillTitle,
		)
	}

	if src := fieldSource(details, "items", log); src != "" {
		info.RequiredItems = wikitext.ParseQuantifiedItems(src, s.exclusions)
	}
}

func (s *Service) applyRecommended(info *Info, details wikitext.Template, log *logrus.Entry) {
	src := fieldSource(details, "recommended", log)
	if src == "" {
		return
	}

	info.RecommendedItems = wikitext.ParseQuantifiedItems(src, s.exclusions)
	info.RecommendedSkills = wikitext.ParseSkillLevels(
		wikitext.ExtractFragment(details.Raw("recommended")),
		wikitext.RecommendedSkillTitle,
	)
}

func applyKills(info *Info, details wikitext.Template, log *logrus.Entry) {
	if src := fieldSource(details, "kills", log); src != "" {
		info.EnemiesToDefeat = wikitext.ParseEnemies(src)
	}
}

func applyRewards(info *Info, rewards wikitext.Template, log *logrus.Entry) {
	if qp, ok := rewards.IntParam("qp"); ok {
		info.QuestPoints = qp
	} else {
		log.WithField("field", "qp").Debug("quest points not recognized")
	}

	src := fieldSource(rewards, "rewards", log)
	if src == "" {
		return
	}

	info.XPRewards = wikitext.ParseExperience(wikitext.ExtractFragment(rewards.Raw("rewards")))
	info.Rewards = wikitext.BulletLines(src)
}
