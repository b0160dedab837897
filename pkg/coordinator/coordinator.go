// Package coordinator composes the session and leads channels into one
// synchronized view of the authority's state. It owns the ordered
// component and lead collections, the derived notification feed, the
// agent stage resolver and the read-id set; nothing outside the
// coordinator mutates them. Outbound requests are fire-and-forget; the
// authority's next frame is authoritative.
package coordinator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sophiie/orbit/config"
	"github.com/sophiie/orbit/errors"
	"github.com/sophiie/orbit/logging"
	"github.com/sophiie/orbit/pkg/channel"
	"github.com/sophiie/orbit/pkg/credential"
	"github.com/sophiie/orbit/pkg/leads"
	"github.com/sophiie/orbit/pkg/notify"
	"github.com/sophiie/orbit/pkg/protocol"
	"github.com/sophiie/orbit/pkg/stage"
	"github.com/sophiie/orbit/pkg/workspace"
)

// Options configures a Coordinator.
type Options struct {
	Config     *config.Config
	Credential credential.Provider

	// HTTPClient overrides http.DefaultClient for lead hydration.
	HTTPClient *http.Client
	// Dialer overrides websocket.DefaultDialer. Used in tests.
	Dialer *websocket.Dialer
}

// Snapshot is an immutable copy of the coordinator's state, safe to
// read without synchronization.
type Snapshot struct {
	Components    []workspace.Component `json:"components"`
	Leads         []leads.Lead          `json:"leads"`
	Notifications []notify.Notification `json:"notifications"`
	Intents       []protocol.Intent     `json:"intents,omitempty"`

	SessionStatus channel.Status `json:"sessionStatus"`
	LeadsStatus   channel.Status `json:"leadsStatus"`
	ServerStatus  string         `json:"serverStatus"`
	AgentStage    stage.Stage    `json:"agentStage"`
	CallActive    bool           `json:"callActive"`

	PendingPush *leads.Lead `json:"pendingPush,omitempty"`
}

// Coordinator mirrors the authority's workspace and lead state over two
// independently-reconnecting channels. All methods are safe for
// concurrent use; every state transition happens under one mutex, so no
// cross-channel ordering is assumed beyond per-channel delivery order.
type Coordinator struct {
	cfg        *config.Config
	cred       credential.Provider
	httpClient *http.Client
	sessionID  string
	log        *logrus.Entry

	session *channel.Channel
	leadsCh *channel.Channel

	mu            sync.Mutex
	started       bool
	stopped       bool
	components    []workspace.Component
	leadList      []leads.Lead
	notifications []notify.Notification
	intents       []protocol.Intent
	read          notify.ReadSet
	resolver      *stage.Resolver
	serverStatus  string
	sessionStatus channel.Status
	leadsStatus   channel.Status
	pendingPush   *leads.Lead
	pendingTimer  *time.Timer
	subscribers   map[int]chan Snapshot
	nextSubID     int
}

// New builds a coordinator from configuration. Channels are created but
// not opened; call Start.
func New(opts Options) (*Coordinator, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "coordinator requires a configuration")
	}
	if opts.Credential == nil {
		return nil, errors.CredentialMissing()
	}
	cfg := opts.Config
	cfg.ApplyDefaults()

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sessionID := cfg.Server.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	c := &Coordinator{
		cfg:           cfg,
		cred:          opts.Credential,
		httpClient:    httpClient,
		sessionID:     sessionID,
		log:           logging.NewLogger("coordinator"),
		read:          notify.NewReadSet(),
		resolver:      stage.NewResolver(),
		serverStatus:  protocol.ServerStatusSynced,
		sessionStatus: channel.StatusDisconnected,
		leadsStatus:   channel.StatusDisconnected,
		subscribers:   make(map[int]chan Snapshot),
	}

	reconnect := time.Duration(cfg.Sync.ReconnectDelaySeconds) * time.Second

	c.session = channel.New(channel.Config{
		Name:           "session",
		URL:            c.sessionURL,
		OnMessage:      c.handleSessionMessage,
		OnStatus:       func(s channel.Status) { c.onChannelStatus("session", s) },
		ReconnectDelay: reconnect,
		Dialer:         opts.Dialer,
	})

	var pingMsg []byte
	if cfg.Sync.PingIntervalSeconds > 0 {
		pingMsg, _ = json.Marshal(protocol.NewPing())
	}
	c.leadsCh = channel.New(channel.Config{
		Name:           "leads",
		URL:            c.leadsURL,
		OnMessage:      c.handleLeadsMessage,
		OnStatus:       func(s channel.Status) { c.onChannelStatus("leads", s) },
		ReconnectDelay: reconnect,
		PingMessage:    pingMsg,
		PingInterval:   time.Duration(cfg.Sync.PingIntervalSeconds) * time.Second,
		Dialer:         opts.Dialer,
	})

	return c, nil
}

// SessionID returns the workspace session this coordinator joined.
func (c *Coordinator) SessionID() string {
	return c.sessionID
}

// Start opens both channels. Calling Start again while running is a
// no-op; the channels' single-flight guard prevents duplicate sockets.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.log.WithField("session_id", c.sessionID).Info("Starting sync")
	c.session.Connect()
	c.leadsCh.Connect()
}

// Stop tears down both channels and cancels timers. Idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
		c.pendingTimer = nil
	}
	subs := c.subscribers
	c.subscribers = make(map[int]chan Snapshot)
	c.mu.Unlock()

	c.session.Close()
	c.leadsCh.Close()

	for _, ch := range subs {
		close(ch)
	}
	c.log.Info("Sync stopped")
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a state stream. Every mutation pushes a fresh
// snapshot; slow consumers miss intermediate snapshots rather than
// blocking the sync loop. The returned stop function unregisters and
// closes the stream.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan Snapshot, 16)
	c.subscribers[id] = ch
	c.mu.Unlock()

	stop := func() {
		c.mu.Lock()
		sub, ok := c.subscribers[id]
		delete(c.subscribers, id)
		c.mu.Unlock()
		if ok {
			close(sub)
		}
	}
	return ch, stop
}

// SendUtterance forwards user input to the authority's AI pipeline on
// the session channel. Dropped with an error when the channel is not
// open; callers are not required to queue.
func (c *Coordinator) SendUtterance(text, source string) error {
	return c.sendSession(protocol.NewUtterance(text, source))
}

// SendAction sends a direct component action on the session channel.
func (c *Coordinator) SendAction(action, componentID string, payload map[string]interface{}) error {
	return c.sendSession(protocol.NewAction(action, componentID, payload))
}

// SendDecision sends the tradie's approve/reject verdict on the leads
// channel.
func (c *Coordinator) SendDecision(leadID, decision string) error {
	data, err := json.Marshal(protocol.NewDecide(leadID, decision))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode decide frame")
	}
	if err := c.leadsCh.Send(data); err != nil {
		c.log.WithError(err).Debug("Dropped decide frame")
		return err
	}
	return nil
}

// RequestSync re-issues the workspace pull on the session channel.
func (c *Coordinator) RequestSync() error {
	return c.sendSession(protocol.NewSyncRequest())
}

// MarkAllNotificationsRead inserts every currently-derived notification
// id into the read set.
func (c *Coordinator) MarkAllNotificationsRead() {
	c.mu.Lock()
	notify.MarkAll(c.leadList, c.read)
	c.rederiveLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)
}

// ClearPendingPush dismisses the new-lead alert slot.
func (c *Coordinator) ClearPendingPush() {
	c.mu.Lock()
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
		c.pendingTimer = nil
	}
	c.pendingPush = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)
}

func (c *Coordinator) sendSession(frame interface{}) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode session frame")
	}
	if err := c.session.Send(data); err != nil {
		c.log.WithError(err).Debug("Dropped session frame")
		return err
	}
	return nil
}

// sessionURL builds the session channel endpoint. An empty token defers
// the attempt.
func (c *Coordinator) sessionURL() string {
	token := c.cred.Token()
	if token == "" || c.cfg.Server.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/ws/session/%s?token=%s", strings.TrimRight(c.cfg.Server.BaseURL, "/"), c.sessionID, token)
}

// leadsURL builds the leads channel endpoint.
func (c *Coordinator) leadsURL() string {
	token := c.cred.Token()
	if token == "" || c.cfg.Server.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/ws/leads?token=%s", strings.TrimRight(c.cfg.Server.BaseURL, "/"), token)
}

// httpBaseURL derives the REST base from the configured endpoints.
func (c *Coordinator) httpBaseURL() string {
	if c.cfg.Server.HTTPURL != "" {
		return strings.TrimRight(c.cfg.Server.HTTPURL, "/")
	}
	base := strings.TrimRight(c.cfg.Server.BaseURL, "/")
	base = strings.Replace(base, "wss://", "https://", 1)
	base = strings.Replace(base, "ws://", "http://", 1)
	return base
}

func (c *Coordinator) onChannelStatus(name string, status channel.Status) {
	c.mu.Lock()
	switch name {
	case "session":
		c.sessionStatus = status
	case "leads":
		c.leadsStatus = status
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)

	if status != channel.StatusConnected {
		return
	}
	switch name {
	case "session":
		// Pull-based hydration: the server does not push a snapshot
		// unprompted.
		if err := c.RequestSync(); err != nil {
			c.log.WithError(err).Warn("Failed to request initial sync")
		}
	case "leads":
		go c.hydrateLeads()
	}
}

// hydrateLeads fetches the full lead list over REST after the leads
// channel connects. The push channel only carries deltas.
func (c *Coordinator) hydrateLeads() {
	url := c.httpBaseURL() + "/api/leads"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		c.log.WithError(err).Warn("Failed to build lead hydration request")
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.cred.Token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("Lead hydration failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.WithField("status", resp.StatusCode).Warn("Lead hydration rejected")
		return
	}

	var records []leads.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.log.WithError(err).Warn("Failed to decode lead list")
		return
	}

	list := make([]leads.Lead, 0, len(records))
	for _, rec := range records {
		list = append(list, leads.FromRecord(rec))
	}

	c.mu.Lock()
	c.leadList = list
	c.rederiveLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)

	c.log.WithField("count", len(list)).Debug("Hydrated lead list")
}

func (c *Coordinator) handleSessionMessage(data []byte) {
	frame, err := protocol.ParseFrame(data)
	if err != nil {
		// Malformed frames must never reach the reducers
		c.log.WithError(err).Debug("Dropped session frame")
		return
	}

	c.mu.Lock()
	switch f := frame.(type) {
	case *protocol.StatusFrame:
		c.serverStatus = f.Status
	case *protocol.IntentParsedFrame:
		c.intents = f.Intents
	case *protocol.PatchFrame:
		c.components = workspace.Apply(c.components, f.Operations)
	default:
		c.log.WithField("frame_type", frame.FrameType()).Debug("Ignoring frame on session channel")
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)
}

func (c *Coordinator) handleLeadsMessage(data []byte) {
	frame, err := protocol.ParseFrame(data)
	if err != nil {
		c.log.WithError(err).Debug("Dropped leads frame")
		return
	}

	c.mu.Lock()
	switch f := frame.(type) {
	case *protocol.ConnectedFrame:
		c.log.WithField("tradie_id", f.TradieID).Debug("Leads channel acknowledged")
		c.mu.Unlock()
		return
	case *protocol.PongFrame:
		c.mu.Unlock()
		return
	case *protocol.NewLeadFrame:
		lead := leads.FromRecord(f.Lead)
		c.leadList = leads.Upsert(c.leadList, lead)
		c.resolver.OnLeadStatus(f.Lead.Status)
		c.setPendingPushLocked(lead)
		c.rederiveLocked()
	case *protocol.LeadUpdateFrame:
		list, _, found := leads.ApplyUpdate(c.leadList, f.Lead)
		c.leadList = list
		if found && f.Lead.Status != "" {
			c.resolver.OnLeadStatus(f.Lead.Status)
		}
		c.rederiveLocked()
	case *protocol.LeadDecidedFrame:
		list, _, found := leads.ApplyUpdate(c.leadList, leads.Record{ID: f.LeadID, Decision: f.Decision})
		c.leadList = list
		if !found {
			c.log.WithField("lead_id", f.LeadID).Debug("Decision for unknown lead")
		}
		c.rederiveLocked()
	case *protocol.CallStatusFrame:
		switch f.Status {
		case protocol.CallStarted:
			c.resolver.OnCallStarted(f.Caller)
		case protocol.CallEnded:
			c.resolver.OnCallEnded()
		}
	default:
		c.log.WithField("frame_type", frame.FrameType()).Debug("Ignoring frame on leads channel")
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.broadcast(snap)
}

// setPendingPushLocked occupies the single alert slot and arms the
// auto-clear timer. A newer lead displaces the current occupant.
func (c *Coordinator) setPendingPushLocked(lead leads.Lead) {
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
	}
	pushed := lead
	c.pendingPush = &pushed

	timeout := time.Duration(c.cfg.Sync.PendingPushTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return
	}
	leadID := lead.ID
	c.pendingTimer = time.AfterFunc(timeout, func() {
		c.mu.Lock()
		if c.pendingPush == nil || c.pendingPush.ID != leadID {
			c.mu.Unlock()
			return
		}
		c.pendingPush = nil
		c.pendingTimer = nil
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.broadcast(snap)
	})
}

// rederiveLocked recomputes the notification feed from the lead list.
func (c *Coordinator) rederiveLocked() {
	c.notifications = notify.Derive(c.leadList, c.read)
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Components:    append([]workspace.Component(nil), c.components...),
		Leads:         append([]leads.Lead(nil), c.leadList...),
		Notifications: append([]notify.Notification(nil), c.notifications...),
		Intents:       append([]protocol.Intent(nil), c.intents...),
		SessionStatus: c.sessionStatus,
		LeadsStatus:   c.leadsStatus,
		ServerStatus:  c.serverStatus,
		AgentStage:    c.resolver.Stage(),
		CallActive:    c.resolver.CallActive(),
	}
	if c.pendingPush != nil {
		pushed := *c.pendingPush
		snap.PendingPush = &pushed
	}
	return snap
}

func (c *Coordinator) broadcast(snap Snapshot) {
	c.mu.Lock()
	subs := make([]chan Snapshot, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// Slow consumers skip intermediate snapshots
		}
	}
}
