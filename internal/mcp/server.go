package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/osrs-mcp/internal/logging"
	"github.com/yourusername/osrs-mcp/internal/metrics"
	"github.com/yourusername/osrs-mcp/internal/quest"
	"github.com/yourusername/osrs-mcp/internal/tools"
	"github.com/yourusername/osrs-mcp/internal/tracing"
	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// Options wires the server to its collaborators
type Options struct {
	Client  *wiki.Client
	Quests  *quest.Service
	Logger  logrus.FieldLogger
	Version string
}

// Server wraps the MCP server with the wiki client and quest service
type Server struct {
	mcp    *mcp.Server
	client *wiki.Client
	quests *quest.Service
	logger *logrus.Entry
}

// toolFunc decodes raw arguments and returns a JSON-serializable result
type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// summarizer results get a plain-text line ahead of their JSON payload
type summarizer interface {
	Summary() string
}

// imager results carry binary image content after their JSON metadata
type imager interface {
	ImageData() ([]byte, string)
}

// NewServer creates a new MCP server with every OSRS tool registered
func NewServer(opts Options) *Server {
	s := &Server{
		client: opts.Client,
		quests: opts.Quests,
		logger: logging.Component(opts.Logger, "mcp"),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "osrs-mcp",
		Version: opts.Version,
	}, nil)

	s.registerTools()

	return s
}

// GetMCPServer returns the underlying MCP server
func (s *Server) GetMCPServer() *mcp.Server {
	return s.mcp
}

// Handler serves MCP over streamable HTTP with stateless JSON responses
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{
			Stateless:    true,
			JSONResponse: true,
		},
	)
}

func (s *Server) registerTools() {
	s.addTool("osrs_wiki_search",
		"Search the Old School RuneScape Wiki for pages matching a query. Returns titles, snippets, and page metadata",
		`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search terms"},
				"limit": {"type": "integer", "description": "Maximum number of results (default: 10)", "default": 10}
			},
			"required": ["query"]
		}`, s.handleSearch)

	s.addTool("osrs_wiki_page_outline",
		"Get page structure with section tree, summary, infobox, and categories. Use this before fetching full content to understand page organization",
		titleSchema("Page title"), s.handlePageOutline)

	s.addTool("osrs_wiki_page_section",
		"Get full content of a specific page section by index. If the index is invalid, the error suggests calling osrs_wiki_page_outline for fresh indices",
		`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Page title"},
				"section_index": {"type": "integer", "description": "Section index from osrs_wiki_page_outline"}
			},
			"required": ["title", "section_index"]
		}`, s.handlePageSection)

	s.addTool("osrs_wiki_page_content",
		"Get entire rendered page content as markdown. Warning: may be large. Consider osrs_wiki_page_outline + osrs_wiki_page_section for targeted retrieval",
		titleSchema("Page title"), s.handlePageContent)

	s.addTool("osrs_wiki_page_raw",
		"Get the raw, unrendered wikitext of a page, including template markup",
		titleSchema("Page title"), s.handlePageRaw)

	s.addTool("osrs_wiki_page_info_by_key",
		"Get the value of a single infobox field on a page, for example 'members', 'release' or 'examine'. Call osrs_wiki_page_outline to see every infobox field",
		`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Page title"},
				"key": {"type": "string", "description": "Infobox field name"}
			},
			"required": ["title", "key"]
		}`, s.handlePageInfoKey)

	s.addTool("osrs_wiki_page_main_image",
		"Get the main image of a page as image content, with its file name and dimensions",
		titleSchema("Page title"), s.handlePageMainImage)

	s.addTool("osrs_wiki_category",
		"Get pages and subcategories within a category, for example 'Quests' or 'Members' quests'",
		`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Category name (with or without 'Category:' prefix)"},
				"limit": {"type": "integer", "description": "Maximum number of results (default: 20)", "default": 20},
				"continue_token": {"type": "string", "description": "Token from a previous response to fetch the next page"}
			},
			"required": ["category"]
		}`, s.handleCategory)

	s.addTool("osrs_wiki_backlinks",
		"Find articles that link to a given page",
		`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Page title to find backlinks for"},
				"limit": {"type": "integer", "description": "Maximum number of results (default: 20)", "default": 20},
				"continue_token": {"type": "string", "description": "Token from a previous response to fetch the next page"}
			},
			"required": ["title"]
		}`, s.handleBacklinks)

	s.addTool("osrs_quest_info",
		"Get structured information about an OSRS quest: release, difficulty, length, quest giver, required and recommended items and skills, prerequisite quests, enemies to defeat, and rewards",
		`{
			"type": "object",
			"properties": {
				"quest_name": {"type": "string", "description": "The name of the quest, e.g. 'Cook's Assistant'"}
			},
			"required": ["quest_name"]
		}`, s.handleQuestInfo)
}

func titleSchema(description string) string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "` + description + `"}
		},
		"required": ["title"]
	}`
}

// addTool registers fn behind request logging, metrics and tracing
func (s *Server) addTool(name, description, schema string, fn toolFunc) {
	s.mcp.AddTool(&mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: json.RawMessage(schema),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := tracing.StartSpan(ctx, "tool."+name)
		defer span.End()
		tracing.AddToolAttributes(span, name)

		log := s.logger.WithFields(logrus.Fields{
			"tool":       name,
			"request_id": uuid.NewString(),
		})

		start := time.Now()
		result, err := fn(ctx, req.Params.Arguments)
		duration := time.Since(start)
		metrics.RecordToolCall(name, duration.Seconds(), err == nil)

		if err != nil {
			tracing.RecordError(span, err)
			errResp := FormatError(err)
			entry := log.WithFields(logrus.Fields{
				"code":     errResp.Error,
				"duration": duration.String(),
			})
			if errResp.Error == CodeInternal {
				entry.WithField("error", err.Error()).Error("tool call failed")
			} else {
				entry.Warn("tool call failed")
			}
			return errorResult(errResp), nil
		}

		log.WithField("duration", duration.String()).Info("tool call complete")
		return successResult(result)
	})
}

// decodeArgs unmarshals tool arguments and checks required string fields
func decodeArgs(raw json.RawMessage, v any, required map[string]*string) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, v); err != nil {
			return &InputError{Message: "invalid arguments: " + err.Error()}
		}
	}
	for field, value := range required {
		if strings.TrimSpace(*value) == "" {
			return &InputError{Message: field + " is required"}
		}
	}
	return nil
}

func defaultLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

// Tool handlers

func (s *Server) handleSearch(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := decodeArgs(raw, &args, map[string]*string{"query": &args.Query}); err != nil {
		return nil, err
	}

	return tools.SearchWiki(ctx, s.client, args.Query, defaultLimit(args.Limit, 10))
}

type titleArgs struct {
	Title string `json:"title"`
}

func (s *Server) handlePageOutline(ctx context.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetPageOutline(ctx, s.client, args.Title)
}

func (s *Server) handlePageSection(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Title        string `json:"title"`
		SectionIndex int    `json:"section_index"`
	}
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetPageSection(ctx, s.client, args.Title, args.SectionIndex)
}

func (s *Server) handlePageContent(ctx context.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetPageContent(ctx, s.client, args.Title)
}

func (s *Server) handlePageRaw(ctx context.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetPageRaw(ctx, s.client, args.Title)
}

func (s *Server) handlePageInfoKey(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Title string `json:"title"`
		Key   string `json:"key"`
	}
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title, "key": &args.Key}); err != nil {
		return nil, err
	}

	return tools.GetPageInfoKey(ctx, s.client, args.Title, args.Key)
}

func (s *Server) handlePageMainImage(ctx context.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetPageMainImage(ctx, s.client, args.Title)
}

func (s *Server) handleCategory(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Category      string `json:"category"`
		Limit         int    `json:"limit"`
		ContinueToken string `json:"continue_token"`
	}
	if err := decodeArgs(raw, &args, map[string]*string{"category": &args.Category}); err != nil {
		return nil, err
	}

	return tools.GetCategory(ctx, s.client, args.Category, defaultLimit(args.Limit, 20), args.ContinueToken)
}

func (s *Server) handleBacklinks(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Title         string `json:"title"`
		Limit         int    `json:"limit"`
		ContinueToken string `json:"continue_token"`
	}
	if err := decodeArgs(raw, &args, map[string]*string{"title": &args.Title}); err != nil {
		return nil, err
	}

	return tools.GetBacklinks(ctx, s.client, args.Title, defaultLimit(args.Limit, 20), args.ContinueToken)
}

func (s *Server) handleQuestInfo(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		QuestName string `json:"quest_name"`
	}
	// Blank names are rejected by the quest service itself
	if err := decodeArgs(raw, &args, nil); err != nil {
		return nil, err
	}

	return tools.GetQuestInfo(ctx, s.client, s.quests, args.QuestName)
}

// Helper methods

func successResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	content := []mcp.Content{}
	if sum, ok := data.(summarizer); ok {
		content = append(content, &mcp.TextContent{Text: sum.Summary()})
	}
	content = append(content, &mcp.TextContent{Text: string(jsonData)})
	if img, ok := data.(imager); ok {
		imgData, mimeType := img.ImageData()
		content = append(content, &mcp.ImageContent{Data: imgData, MIMEType: mimeType})
	}

	return &mcp.CallToolResult{Content: content}, nil
}

func errorResult(errResp *ErrorResponse) *mcp.CallToolResult {
	errJSON, _ := json.Marshal(errResp)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(errJSON)},
		},
		IsError: true,
	}
}
