package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lanternworks/boardman/internal/batch"
	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/cache"
	"github.com/lanternworks/boardman/internal/github"
	"github.com/lanternworks/boardman/internal/metrics"
	"github.com/lanternworks/boardman/internal/store"
	"github.com/lanternworks/boardman/internal/syncer"
)

const serverVersion = "0.1.0"

// BulkRunner executes classification and transition batches.
type BulkRunner interface {
	BulkClassify(ctx context.Context, maxItems int, stateFilter string) (*batch.ClassifyReport, error)
	BulkTransition(ctx context.Context, itemIDs []int, targetState string, dryRun bool) (*batch.TransitionReport, error)
}

// Tracker reads single items and commit activity from the remote side.
type Tracker interface {
	GetIssue(ctx context.Context, number int) (*board.Item, error)
	RecentActivity(ctx context.Context, since time.Time) ([]github.Commit, error)
}

// SyncRunner refreshes the local snapshot on demand.
type SyncRunner interface {
	Run(ctx context.Context) (*syncer.Result, error)
	LastSync(ctx context.Context) (time.Time, bool)
}

// Deps wires a handler. Logger may be nil; zero TTLs and an empty
// States list fall back to the defaults.
type Deps struct {
	Executor   BulkRunner
	Tracker    Tracker
	Lister     batch.Lister
	Classifier batch.Classifier
	Store      store.Store
	Syncer     SyncRunner
	Cache      *cache.Cache[json.RawMessage]
	Recorder   *metrics.Recorder
	TTLs       cache.TTLConfig
	States     board.States
	Logger     *slog.Logger
}

// handler contains the logic for each MCP method.
type handler struct {
	executor   BulkRunner
	tracker    Tracker
	lister     batch.Lister
	classifier batch.Classifier
	store      store.Store
	syncer     SyncRunner
	cache      *cache.Cache[json.RawMessage]
	recorder   *metrics.Recorder
	ttls       cache.TTLConfig
	states     board.States
	logger     *slog.Logger
}

func newHandler(deps Deps) *handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttls := deps.TTLs
	if ttls == (cache.TTLConfig{}) {
		ttls = cache.DefaultTTLConfig()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder(logger, 0)
	}
	c := deps.Cache
	if c == nil {
		c = cache.New[json.RawMessage]()
	}
	states := deps.States
	if len(states) == 0 {
		states = board.DefaultStates()
	}
	return &handler{
		executor:   deps.Executor,
		tracker:    deps.Tracker,
		lister:     deps.Lister,
		classifier: deps.Classifier,
		store:      deps.Store,
		syncer:     deps.Syncer,
		cache:      c,
		recorder:   recorder,
		ttls:       ttls,
		states:     states,
		logger:     logger.With("component", "gateway"),
	}
}

func (h *handler) handleInitialize(
	ctx context.Context, params json.RawMessage,
) (json.RawMessage, *RPCError) {
	var p InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}

	h.logger.Info("client connected",
		"client", p.ClientInfo.Name, "version", p.ClientInfo.Version)

	result := InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: ServerCapability{
			Tools: &ToolCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{Name: "boardman", Version: serverVersion},
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
	return data, nil
}

func (h *handler) handleNotification(req Request) {
	switch req.Method {
	case "notifications/initialized":
		h.logger.Info("client initialized")
	default:
		h.logger.Debug("unhandled notification", "method", req.Method)
	}
}

func (h *handler) handleToolsList(context.Context) (json.RawMessage, *RPCError) {
	result := map[string]any{"tools": toolDefinitions()}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
	return data, nil
}

func (h *handler) handleToolsCall(
	ctx context.Context, params json.RawMessage,
) (json.RawMessage, *RPCError) {
	var req CallToolRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	if !strings.HasPrefix(req.Name, "boardman_") {
		return nil, &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s", req.Name),
		}
	}

	start := time.Now()
	result, rpcErr := h.dispatchTool(ctx, req)
	h.recorder.Record("tool:"+req.Name, time.Since(start), rpcErr != nil || isToolError(result))
	return result, rpcErr
}

func (h *handler) dispatchTool(
	ctx context.Context, req CallToolRequest,
) (json.RawMessage, *RPCError) {
	switch req.Name {
	case "boardman_bulk_classify":
		var args struct {
			MaxItems int    `json:"max_items"`
			State    string `json:"state"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleBulkClassify(ctx, args.MaxItems, args.State)

	case "boardman_bulk_move":
		var args struct {
			ItemIDs []int  `json:"item_ids"`
			State   string `json:"state"`
			DryRun  bool   `json:"dry_run"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleBulkMove(ctx, args.ItemIDs, args.State, args.DryRun)

	case "boardman_classify_issue":
		var args struct {
			ItemID int `json:"item_id"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleClassifyIssue(ctx, args.ItemID)

	case "boardman_board_health":
		return h.handleBoardHealth(ctx)

	case "boardman_list_issues":
		var args struct {
			State string `json:"state"`
			Limit int    `json:"limit"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleListIssues(ctx, args.State, args.Limit)

	case "boardman_recent_activity":
		var args struct {
			Hours int `json:"hours"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleRecentActivity(ctx, args.Hours)

	case "boardman_sync":
		return h.handleSync(ctx)

	case "boardman_cache_stats":
		return h.handleCacheStats()

	case "boardman_flush_cache":
		var args struct {
			Prefix string `json:"prefix"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleFlushCache(args.Prefix)

	case "boardman_op_metrics":
		return h.handleOpMetrics()

	case "boardman_decisions":
		var args struct {
			ItemID int    `json:"item_id"`
			Action string `json:"action"`
			Limit  int    `json:"limit"`
		}
		if rpcErr := unmarshalArgs(req.Arguments, &args); rpcErr != nil {
			return nil, rpcErr
		}
		return h.handleDecisions(ctx, args.ItemID, args.Action, args.Limit)

	default:
		return nil, &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s", req.Name),
		}
	}
}

func unmarshalArgs(raw json.RawMessage, v any) *RPCError {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// recordDecision persists an audit row; failures are logged, never
// surfaced to the client.
func (h *handler) recordDecision(ctx context.Context, d *store.Decision) {
	if err := h.store.InsertDecision(ctx, d); err != nil {
		h.logger.Error("record decision failed", "action", d.Action, "error", err)
	}
}

// isToolError checks whether a tools/call result has isError set.
func isToolError(result json.RawMessage) bool {
	if len(result) == 0 {
		return false
	}
	var peek struct {
		IsError bool `json:"isError"`
	}
	if err := json.Unmarshal(result, &peek); err != nil {
		return false
	}
	return peek.IsError
}
