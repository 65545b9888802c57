package zwave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/db"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/unit"
)

// Inclusion and exclusion modes
const (
	modeAny         uint8 = 0x01
	modeStop        uint8 = 0x05
	optionHighPower uint8 = 0x80
)

// AddNodeToNetwork callback statuses
const (
	addStatusNodeFound    uint8 = 0x02
	addStatusAddingSlave  uint8 = 0x03
	addStatusProtocolDone uint8 = 0x05
	addStatusDone         uint8 = 0x06
	addStatusFailed       uint8 = 0x07
)

// RemoveNodeFromNetwork callback statuses
const (
	removeStatusRemoving uint8 = 0x03
	removeStatusDone     uint8 = 0x06
)

const (
	updateNodeInfoReceived  uint8 = 0x84
	removeFailedNodeStarted uint8 = 0x00
)

const (
	nodeBitmapLength = 29
	startupTimeout   = 30 * time.Second
	exclusionTimeout = 60 * time.Second
	subscriberBuffer = 16
)

var (
	// ErrSendRejected indicates the stick refused to queue a frame
	ErrSendRejected = errors.New("send rejected by controller")

	// ErrUnknownNode indicates the stick has no record of a node
	ErrUnknownNode = errors.New("unknown node")
)

// Transport is the serial API link the driver talks through.
type Transport interface {
	Request(ctx context.Context, p *Packet, wantResponse bool) (*Packet, error)
	Incoming() <-chan *Packet
	IsConnected() bool
	Close() error
}

// Settings tune polling.
type Settings struct {
	PollPeriod      time.Duration
	PollInterval    time.Duration
	MaxRetries      int
	ResponseTimeout time.Duration
}

// DefaultSettings returns the settings used for zero fields of Options.
func DefaultSettings() Settings {
	return Settings{
		PollPeriod:      unit.DefaultPollPeriod,
		PollInterval:    250 * time.Millisecond,
		MaxRetries:      3,
		ResponseTimeout: 2 * time.Second,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.PollPeriod > 0 {
		d.PollPeriod = s.PollPeriod
	}
	if s.PollInterval > 0 {
		d.PollInterval = s.PollInterval
	}
	if s.MaxRetries > 0 {
		d.MaxRetries = s.MaxRetries
	}
	if s.ResponseTimeout > 0 {
		d.ResponseTimeout = s.ResponseTimeout
	}
	return d
}

// EventSink receives unit events and field changes.
type EventSink interface {
	PublishEvent(ev unit.Event)
	PublishField(unitName, field string, value any)
}

type nopSink struct{}

func (nopSink) PublishEvent(unit.Event)          {}
func (nopSink) PublishField(string, string, any) {}

// UnitStore persists unit records. db.UnitStore satisfies it.
type UnitStore interface {
	List(ctx context.Context) ([]*db.UnitRecord, error)
	Save(ctx context.Context, u *db.UnitRecord) error
	Delete(ctx context.Context, nodeID uint8) error
}

// Options configure a Controller. Every field is optional.
type Options struct {
	Registry *unit.Registry
	Store    UnitStore
	Sink     EventSink
	Settings Settings
}

// UnitInfo is a diagnostic snapshot of one unit.
type UnitInfo struct {
	ID           uint8         `json:"id"`
	Name         string        `json:"name"`
	Kind         string        `json:"kind"`
	TypeInfo     string        `json:"type_info"`
	Status       string        `json:"status"`
	Retries      int           `json:"retries"`
	Lag          time.Duration `json:"lag"`
	PollPeriod   time.Duration `json:"poll_period"`
	NextPoll     time.Time     `json:"next_poll"`
	Capabilities []string      `json:"capabilities"`
	Listening    bool          `json:"listening"`
	Generic      uint8         `json:"generic"`
	Specific     uint8         `json:"specific"`
}

// pendingPoll is the report the poll loop is waiting for.
type pendingPoll struct {
	node   uint8
	expect unit.Expect
	done   chan struct{}
}

func (p *pendingPoll) matches(node, class, cmd uint8, data []byte) bool {
	return p.node == node && p.expect.Class == class && p.expect.Command == cmd &&
		2+len(data) >= p.expect.Length
}

type adoptReason int

const (
	adoptStartup adoptReason = iota
	adoptNodeInfo
	adoptInclusion
)

// Controller implements device.Controller and device.EventSubscriber over
// the Z-Wave serial API. It owns the units, their field storage and the
// poll loop.
type Controller struct {
	link     Transport
	registry *unit.Registry
	store    UnitStore
	sink     EventSink
	settings Settings

	// mu guards units, fields, queue, pending, joining and the timers.
	// Units are only touched with it held.
	mu           sync.Mutex
	units        map[uint8]unit.Device
	fields       *fieldStore
	queue        []func()
	pending      *pendingPoll
	joining      uint8
	joinTimer    *time.Timer
	excludeTimer *time.Timer

	callbackSeq atomic.Uint32

	subscribers   []chan device.DiscoveryEvent
	subscribersMu sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewController opens the stick at portPath and brings the network up.
func NewController(portPath string, opts Options) (*Controller, error) {
	log.Info().Str("port", portPath).Msg("Initializing Z-Wave controller")
	s, err := OpenSerial(portPath)
	if err != nil {
		return nil, fmt.Errorf("open serial: %w", err)
	}

	c := New(NewLink(s), opts)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start: %w", err)
	}

	log.Info().Int("units", c.unitCount()).Msg("Z-Wave controller initialized")
	return c, nil
}

// New returns a controller over t. Call Start before use.
func New(t Transport, opts Options) *Controller {
	c := &Controller{
		link:     t,
		registry: opts.Registry,
		store:    opts.Store,
		sink:     opts.Sink,
		settings: opts.Settings.withDefaults(),
		units:    make(map[uint8]unit.Device),
		fields:   newFieldStore(),
		stopChan: make(chan struct{}),
	}
	if c.registry == nil {
		c.registry = unit.DefaultRegistry()
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	return c
}

// Start handles incoming frames, restores persisted units and interviews
// every node the stick knows.
func (c *Controller) Start(ctx context.Context) error {
	c.wg.Add(1)
	go c.handleIncoming()

	if err := c.restore(ctx); err != nil {
		return err
	}

	nodes, err := c.nodeList(ctx)
	if err != nil {
		return fmt.Errorf("get init data: %w", err)
	}
	log.Info().Int("nodes", len(nodes)).Msg("Node list received")

	present := make(map[uint8]bool, len(nodes))
	for _, node := range nodes {
		present[node] = true
		if err := c.learnNode(ctx, node, adoptStartup); err != nil {
			log.Warn().Err(err).Uint8("node", node).Msg("Failed to learn node")
		}
	}

	c.mu.Lock()
	for id, d := range c.units {
		if present[id] {
			continue
		}
		log.Warn().Str("unit", d.Base().Name()).Msg("Unit missing from node list")
		d.Base().SetMissingState()
		c.persistLocked(d)
		observeStatus(d.Base())
	}
	c.unlock()

	return nil
}

// Run polls due units every PollInterval until ctx is done or the
// controller closes.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.settings.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

// --- locking helpers ---

// after queues fn to run once mu is released. Callers hold mu.
func (c *Controller) after(fn func()) {
	c.queue = append(c.queue, fn)
}

// unlock releases mu and runs the work queued while it was held.
func (c *Controller) unlock() {
	queued := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
}

func (c *Controller) target() unit.Target {
	return target{c: c}
}

func (c *Controller) nextCallbackID() uint8 {
	return uint8(c.callbackSeq.Add(1)%254) + 1
}

func (c *Controller) unitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.units)
}

// --- startup ---

func (c *Controller) restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	records, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}

	c.mu.Lock()
	defer c.unlock()

	for _, rec := range records {
		d := c.registry.FindBestMatch(unit.BasicSlave, rec.Generic, rec.Specific)
		if d == nil || d.Kind().String() != rec.Kind {
			log.Warn().Uint8("node", rec.NodeID).Str("kind", rec.Kind).Msg("No unit type for stored record")
			continue
		}
		if err := d.Base().UnmarshalBinary(rec.Record); err != nil {
			log.Warn().Err(err).Uint8("node", rec.NodeID).Msg("Skipping stored unit")
			continue
		}
		if d.Base().ID() != rec.NodeID {
			log.Warn().Uint8("node", rec.NodeID).Uint8("record", d.Base().ID()).Msg("Stored unit id mismatch")
			continue
		}
		// records carry the raw flags; a sleeping node must not be polled
		d.Base().SetWireFlags(d.Base().WireFlags())
		d.BindFields(c.target())
		c.units[rec.NodeID] = d
		observeStatus(d.Base())
		log.Debug().Stringer("unit", d.Base()).Msg("Restored unit")
	}
	return nil
}

// nodeList asks the stick for its node bitmap.
func (c *Controller) nodeList(ctx context.Context) ([]uint8, error) {
	resp, err := c.link.Request(ctx, NewRequest(FuncSerialAPIGetInitData), true)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) < 3 {
		return nil, ErrShortFrame
	}

	n := int(resp.Body[2])
	if n > nodeBitmapLength {
		n = nodeBitmapLength
	}
	if len(resp.Body) < 3+n {
		return nil, ErrShortFrame
	}

	var nodes []uint8
	for i, b := range resp.Body[3 : 3+n] {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				nodes = append(nodes, uint8(i*8+bit+1))
			}
		}
	}
	return nodes, nil
}

// learnNode reads the protocol info of node and adopts it.
func (c *Controller) learnNode(ctx context.Context, node uint8, reason adoptReason) error {
	resp, err := c.link.Request(ctx, NewRequest(FuncGetNodeProtocolInfo, node), true)
	if err != nil {
		return err
	}
	if len(resp.Body) < 6 {
		return fmt.Errorf("node %d protocol info: %w", node, ErrShortFrame)
	}
	flags, basic, generic, specific := resp.Body[0], resp.Body[3], resp.Body[4], resp.Body[5]
	if basic == 0 {
		return fmt.Errorf("node %d: %w", node, ErrUnknownNode)
	}

	c.mu.Lock()
	defer c.unlock()
	c.adoptLocked(node, flags, basic, generic, specific, reason)
	return nil
}

// adoptLocked matches a node descriptor against the known unit, or builds a
// new unit from the registry.
func (c *Controller) adoptLocked(node, flags, basic, generic, specific uint8, reason adoptReason) {
	if d, ok := c.units[node]; ok {
		u := d.Base()
		if u.Classify(basic, generic, specific) != unit.NoMatch {
			u.SetWireFlags(flags)
			switch u.Status() {
			case unit.StatusMissing:
				u.SetReadyState()
			case unit.StatusFailed:
				if reason != adoptStartup {
					log.Info().Str("unit", u.Name()).Msg("Failed unit is back")
					u.SetReadyState()
				}
			}
			c.persistLocked(d)
			observeStatus(u)
			return
		}
		log.Info().Str("unit", u.Name()).Uint8("generic", generic).Uint8("specific", specific).
			Msg("Node class changed, replacing unit")
		c.dropLocked(node)
	}

	d := c.registry.FindBestMatch(basic, generic, specific)
	if d == nil {
		log.Info().Uint8("node", node).Uint8("basic", basic).Uint8("generic", generic).
			Uint8("specific", specific).Msg("No unit type for node")
		return
	}

	u := d.Base()
	u.AssignID(node)
	u.SetPollPeriod(c.settings.PollPeriod)
	u.SetWireFlags(flags)
	d.BindFields(c.target())
	u.SetReadyState()
	c.units[node] = d
	c.persistLocked(d)
	observeStatus(u)
	log.Info().Stringer("unit", u).Str("kind", d.Kind().String()).Msg("Unit added")

	if reason != adoptStartup {
		dev := c.toDevice(d)
		c.after(func() {
			c.publishEvent(device.DiscoveryEvent{Type: device.EventDeviceJoined, Device: &dev, Timestamp: time.Now()})
		})
	}
}

// dropLocked forgets a unit and deletes its record.
func (c *Controller) dropLocked(node uint8) {
	d, ok := c.units[node]
	if !ok {
		return
	}
	name := d.Base().Name()
	delete(c.units, node)
	c.fields.dropUnit(node)
	forgetUnit(name)
	if c.pending != nil && c.pending.node == node {
		c.pending = nil
	}

	if c.store != nil {
		c.after(func() {
			err := c.store.Delete(context.Background(), node)
			if err != nil && !errors.Is(err, db.ErrUnitNotFound) {
				log.Error().Err(err).Str("unit", name).Msg("Failed to delete unit record")
			}
		})
	}
}

// persistLocked queues a save of d's record.
func (c *Controller) persistLocked(d unit.Device) {
	if c.store == nil {
		return
	}
	u := d.Base()
	record, err := u.MarshalBinary()
	if err != nil {
		log.Error().Err(err).Str("unit", u.Name()).Msg("Failed to encode unit")
		return
	}
	rec := &db.UnitRecord{
		NodeID:   u.ID(),
		Kind:     d.Kind().String(),
		Generic:  u.GenericClass(),
		Specific: u.SpecificClass(),
		Record:   record,
	}
	c.after(func() {
		if err := c.store.Save(context.Background(), rec); err != nil {
			log.Error().Err(err).Uint8("node", rec.NodeID).Msg("Failed to save unit")
		}
	})
}

// --- incoming frames ---

func (c *Controller) handleIncoming() {
	defer c.wg.Done()

	for {
		select {
		case p, ok := <-c.link.Incoming():
			if !ok {
				return
			}
			c.handlePacket(p)
		case <-c.stopChan:
			return
		}
	}
}

func (c *Controller) handlePacket(p *Packet) {
	switch p.Function {
	case FuncApplicationCommandHandler:
		c.handleApplicationCommand(p.Body)
	case FuncApplicationUpdate:
		c.handleApplicationUpdate(p.Body)
	case FuncAddNodeToNetwork:
		c.handleAddNode(p.Body)
	case FuncRemoveNodeFromNetwork:
		c.handleRemoveNode(p.Body)
	case FuncSendData:
		if len(p.Body) >= 2 && p.Body[1] != 0 {
			log.Debug().Uint8("callback", p.Body[0]).Uint8("status", p.Body[1]).Msg("Transmit not acknowledged")
		}
	default:
		log.Debug().Stringer("packet", p).Msg("Unhandled serial API request")
	}
}

// handleApplicationCommand routes [status][node][len][class][cmd][data...]
// to the addressed unit.
func (c *Controller) handleApplicationCommand(body []byte) {
	if len(body) < 5 {
		return
	}
	node, n := body[1], int(body[2])
	if n < 2 || len(body) < 3+n {
		log.Warn().Uint8("node", node).Hex("body", body).Msg("Malformed application command")
		return
	}
	class, cmd, data := body[3], body[4], body[5:3+n]

	c.mu.Lock()
	defer c.unlock()

	d, ok := c.units[node]
	if !ok {
		log.Debug().Uint8("node", node).Uint8("class", class).Msg("Command from unknown node")
		return
	}
	if !d.HandleFrame(c.target(), class, cmd, data) {
		log.Debug().Str("unit", d.Base().Name()).Uint8("class", class).Uint8("cmd", cmd).Msg("Unhandled command")
	}

	if p := c.pending; p != nil && p.matches(node, class, cmd, data) {
		c.pending = nil
		close(p.done)
	}
}

// handleApplicationUpdate handles [status][node][len][basic][generic][specific]...
func (c *Controller) handleApplicationUpdate(body []byte) {
	if len(body) < 6 || body[0] != updateNodeInfoReceived {
		return
	}
	node, basic, generic, specific := body[1], body[3], body[4], body[5]

	c.mu.Lock()
	d, known := c.units[node]
	if known {
		c.adoptLocked(node, d.Base().WireFlags(), basic, generic, specific, adoptNodeInfo)
	}
	c.unlock()

	if !known {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.settings.ResponseTimeout)
			defer cancel()
			if err := c.learnNode(ctx, node, adoptNodeInfo); err != nil {
				log.Warn().Err(err).Uint8("node", node).Msg("Failed to learn node")
			}
		}()
	}
}

// handleAddNode handles inclusion callbacks:
// [callback][status][node][len][basic][generic][specific]...
func (c *Controller) handleAddNode(body []byte) {
	if len(body) < 3 {
		return
	}
	status, node := body[1], body[2]

	switch status {
	case addStatusNodeFound:
		log.Info().Msg("Inclusion: node found")
	case addStatusAddingSlave:
		c.mu.Lock()
		c.joining = node
		c.unlock()
		log.Info().Uint8("node", node).Msg("Inclusion: adding node")
		c.publishEvent(device.DiscoveryEvent{
			Type:      device.EventDeviceJoining,
			Data:      map[string]any{"node": node},
			Timestamp: time.Now(),
		})
	case addStatusProtocolDone:
		go c.stopInclusion()
	case addStatusDone:
		c.mu.Lock()
		joined := c.joining
		c.joining = 0
		c.unlock()
		if joined == 0 {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.settings.ResponseTimeout)
			defer cancel()
			if err := c.learnNode(ctx, joined, adoptInclusion); err != nil {
				log.Warn().Err(err).Uint8("node", joined).Msg("Failed to learn included node")
			}
		}()
	case addStatusFailed:
		log.Warn().Msg("Inclusion failed")
		go c.stopInclusion()
	}
}

// handleRemoveNode handles exclusion callbacks: [callback][status][node]...
func (c *Controller) handleRemoveNode(body []byte) {
	if len(body) < 3 {
		return
	}
	status, node := body[1], body[2]

	switch status {
	case removeStatusRemoving:
		if node == 0 {
			return
		}
		c.removeUnit(node)
	case removeStatusDone:
		if node != 0 {
			c.removeUnit(node)
		}
		go c.stopExclusion()
	}
}

func (c *Controller) removeUnit(node uint8) {
	c.mu.Lock()
	d, ok := c.units[node]
	if !ok {
		c.unlock()
		return
	}
	dev := c.toDevice(d)
	c.dropLocked(node)
	c.unlock()

	log.Info().Str("unit", dev.Name).Msg("Unit removed")
	c.publishEvent(device.DiscoveryEvent{Type: device.EventDeviceLeft, Device: &dev, Timestamp: time.Now()})
}

// --- polling ---

func (c *Controller) pollOnce(ctx context.Context) {
	t := time.Now()

	c.mu.Lock()
	var due []uint8
	for id, d := range c.units {
		u := d.Base()
		status := u.Status()
		if status != unit.StatusReady && status != unit.StatusError {
			continue
		}
		if u.HasCapability(unit.CapPollable) && u.IsDue(t) {
			due = append(due, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	for _, id := range due {
		if ctx.Err() != nil {
			return
		}
		c.pollUnit(ctx, id)
	}
}

func (c *Controller) pollUnit(ctx context.Context, id uint8) {
	c.mu.Lock()
	d, ok := c.units[id]
	if !ok {
		c.unlock()
		return
	}
	u := d.Base()
	lag := u.RecordLagTime()
	metrics.lag.WithLabelValues(u.Name()).Set(lag.Seconds())

	frame, handled := d.BuildGetFrame(unit.OpGetReport, 0, 0, c.nextCallbackID())
	if !handled {
		c.unlock()
		return
	}
	p := &pendingPoll{node: id, expect: frame.Expect, done: make(chan struct{})}
	c.pending = p
	c.unlock()

	pctx, cancel := context.WithTimeout(ctx, c.settings.ResponseTimeout)
	err := c.transmit(pctx, frame)
	if err == nil {
		select {
		case <-p.done:
		case <-pctx.Done():
			err = fmt.Errorf("report from node %d: %w", id, device.ErrTimeout)
		}
	}
	cancel()

	c.mu.Lock()
	defer c.unlock()

	if c.pending == p {
		c.pending = nil
	}
	d, ok = c.units[id]
	if !ok {
		return
	}
	u = d.Base()
	u.MarkPolled()

	if err == nil {
		metrics.polls.WithLabelValues("ok").Inc()
		u.SetRetryCount(0)
		if u.Status() == unit.StatusError {
			log.Info().Str("unit", u.Name()).Msg("Unit recovered")
			u.SetReadyState()
			c.persistLocked(d)
		}
		observeStatus(u)
		return
	}

	metrics.polls.WithLabelValues("failed").Inc()
	metrics.retries.WithLabelValues(u.Name()).Inc()
	retries := u.IncrementRetryCount()
	log.Debug().Err(err).Str("unit", u.Name()).Int("retries", retries).Msg("Poll failed")

	if retries >= c.settings.MaxRetries {
		switch u.Status() {
		case unit.StatusReady:
			log.Warn().Str("unit", u.Name()).Msg("Unit not responding")
			unit.SetErrorState(d, c.target())
		case unit.StatusError:
			log.Warn().Str("unit", u.Name()).Msg("Unit failed")
			u.SetFailedState()
		}
		c.persistLocked(d)
	}
	observeStatus(u)
}

// transmit sends an encoded unit frame and checks the stick queued it.
func (c *Controller) transmit(ctx context.Context, f unit.Frame) error {
	p, err := PacketFromFrame(f.Bytes)
	if err != nil {
		return err
	}
	resp, err := c.link.Request(ctx, p, true)
	if err != nil {
		return err
	}
	if len(resp.Body) == 0 || resp.Body[0] == 0 {
		return fmt.Errorf("node %d: %w", f.UnitID(), ErrSendRejected)
	}
	return nil
}

// --- inclusion ---

func (c *Controller) stopInclusion() {
	ctx, cancel := context.WithTimeout(context.Background(), c.settings.ResponseTimeout)
	defer cancel()
	if _, err := c.link.Request(ctx, NewRequest(FuncAddNodeToNetwork, modeStop, 0), false); err != nil {
		log.Warn().Err(err).Msg("Failed to stop inclusion")
	}
}

func (c *Controller) stopExclusion() {
	ctx, cancel := context.WithTimeout(context.Background(), c.settings.ResponseTimeout)
	defer cancel()
	if _, err := c.link.Request(ctx, NewRequest(FuncRemoveNodeFromNetwork, modeStop, 0), false); err != nil {
		log.Warn().Err(err).Msg("Failed to stop exclusion")
	}
}

// --- conversion ---

// findLocked resolves a node id, a unit name, or the topic level form of a
// unit name as it arrives on MQTT command topics. An exact name wins.
func (c *Controller) findLocked(id string) (unit.Device, bool) {
	if n, err := strconv.ParseUint(id, 10, 8); err == nil {
		if d, ok := c.units[uint8(n)]; ok {
			return d, true
		}
	}
	for _, d := range c.units {
		if d.Base().Name() == id {
			return d, true
		}
	}
	level := unit.TopicLevel(id)
	for _, n := range c.sortedIDsLocked() {
		if d := c.units[n]; unit.TopicLevel(d.Base().Name()) == level {
			return d, true
		}
	}
	return nil, false
}

func deviceType(k unit.Kind) string {
	switch k {
	case unit.KindBinarySensor:
		return device.DeviceTypeSensor
	case unit.KindEntryControl:
		return device.DeviceTypeLock
	case unit.KindMultiLevelSwitch:
		return device.DeviceTypeLight
	}
	return device.DeviceTypeSwitch
}

func (c *Controller) toDevice(d unit.Device) device.Device {
	u := d.Base()
	defs := d.DescribeFields()
	fields := make([]string, 0, len(defs))
	for _, def := range defs {
		fields = append(fields, def.Name)
	}
	exposes, _ := json.Marshal(map[string]any{
		"kind":         d.Kind().String(),
		"status":       u.Status().String(),
		"capabilities": u.Capabilities().Names(),
		"generic":      u.GenericClass(),
		"specific":     u.SpecificClass(),
		"listening":    u.IsListening(),
		"fields":       fields,
	})
	return device.Device{
		ID:           strconv.Itoa(int(u.ID())),
		Name:         u.Name(),
		Type:         deviceType(d.Kind()),
		Protocol:     device.ProtocolZWave,
		Manufacturer: "Unknown",
		Model:        u.TypeInfo(),
		StateSchema:  schema.FromFields(defs),
		Exposes:      exposes,
	}
}

func (c *Controller) stateLocked(node uint8) device.DeviceState {
	state := make(device.DeviceState)
	for _, f := range c.fields.forUnit(node) {
		if f.set {
			state[f.def.Name] = f.value
		}
	}
	return state
}

// --- device.Controller interface ---

func (c *Controller) ListDevices(_ context.Context) ([]device.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	devices := make([]device.Device, 0, len(c.units))
	for _, id := range c.sortedIDsLocked() {
		devices = append(devices, c.toDevice(c.units[id]))
	}
	return devices, nil
}

func (c *Controller) GetDevice(_ context.Context, id string) (*device.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.findLocked(id)
	if !ok {
		return nil, device.ErrNotFound
	}
	dev := c.toDevice(d)
	return &dev, nil
}

func (c *Controller) RenameDevice(_ context.Context, id, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: name must not be empty", device.ErrValidation)
	}

	c.mu.Lock()
	defer c.unlock()

	d, ok := c.findLocked(id)
	if !ok {
		return device.ErrNotFound
	}
	// names that share a topic level would share MQTT topics
	if other, taken := c.findLocked(newName); taken && other != d {
		return fmt.Errorf("%w: name %q already in use by %q", device.ErrValidation, newName, other.Base().Name())
	}

	u := d.Base()
	forgetUnit(u.Name())
	u.SetName(newName)
	c.persistLocked(d)
	observeStatus(u)
	return nil
}

// RemoveDevice excludes a unit. Without force the node must confirm the
// exclusion itself; the unit goes away when the stick reports it. With
// force a dead node is removed from the stick and the unit dropped at once.
func (c *Controller) RemoveDevice(ctx context.Context, id string, force bool) error {
	c.mu.Lock()
	d, ok := c.findLocked(id)
	var node uint8
	if ok {
		node = d.Base().ID()
	}
	c.unlock()
	if !ok {
		return device.ErrNotFound
	}

	if force {
		resp, err := c.link.Request(ctx, NewRequest(FuncRemoveFailedNode, node, c.nextCallbackID()), true)
		if err != nil {
			return fmt.Errorf("remove failed node: %w", err)
		}
		if len(resp.Body) == 0 || resp.Body[0] != removeFailedNodeStarted {
			return fmt.Errorf("remove failed node %d: %w", node, ErrSendRejected)
		}
		c.removeUnit(node)
		return nil
	}

	if _, err := c.link.Request(ctx, NewRequest(FuncRemoveNodeFromNetwork, modeAny|optionHighPower, c.nextCallbackID()), false); err != nil {
		return fmt.Errorf("start exclusion: %w", err)
	}

	c.mu.Lock()
	if c.excludeTimer != nil {
		c.excludeTimer.Stop()
	}
	c.excludeTimer = time.AfterFunc(exclusionTimeout, c.stopExclusion)
	c.unlock()
	return nil
}

func (c *Controller) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.findLocked(id)
	if !ok {
		return nil, device.ErrNotFound
	}
	return c.stateLocked(d.Base().ID()), nil
}

// SetDeviceState writes fields through the unit's set frames. The local
// value is updated once the stick has queued each frame and the unit is
// polled again on the next pass.
func (c *Controller) SetDeviceState(ctx context.Context, id string, state map[string]any) (device.DeviceState, error) {
	type write struct {
		name  string
		cmd   unit.Command
		frame unit.Frame
	}

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	d, ok := c.findLocked(id)
	if !ok {
		c.unlock()
		return nil, device.ErrNotFound
	}
	node := d.Base().ID()

	writes := make([]write, 0, len(names))
	for _, name := range names {
		cmd, err := d.CommandFor(name, state[name])
		if err != nil {
			c.unlock()
			return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
		}
		frame, handled := d.BuildSetFrame(cmd.Op, cmd.Value1, cmd.Value2, c.nextCallbackID())
		if !handled {
			c.unlock()
			return nil, fmt.Errorf("%s: %w", name, device.ErrUnsupported)
		}
		writes = append(writes, write{name: name, cmd: cmd, frame: frame})
	}
	c.unlock()

	for _, w := range writes {
		if err := c.transmit(ctx, w.frame); err != nil {
			return nil, fmt.Errorf("set %s: %w", w.name, err)
		}
	}

	c.mu.Lock()
	defer c.unlock()

	d, ok = c.units[node]
	if !ok {
		return nil, device.ErrNotFound
	}
	for _, w := range writes {
		if value, ok := reportValue(w.cmd); ok {
			d.HandleFrame(c.target(), unit.ClassBasic, unit.CmdReport, []byte{value})
		}
	}
	d.Base().ForcePoll()
	return c.stateLocked(node), nil
}

// reportValue is the basic report value a node sends after cmd.
func reportValue(cmd unit.Command) (uint8, bool) {
	switch cmd.Op {
	case unit.OpOffOn:
		if cmd.Value1 != 0 {
			return 0xFF, true
		}
		return 0x00, true
	case unit.OpSetLevel:
		if cmd.Value1 <= unit.MaxLevel {
			return uint8(cmd.Value1), true
		}
	}
	return 0, false
}

func (c *Controller) PermitJoin(ctx context.Context, enable bool, duration int) error {
	c.mu.Lock()
	if c.joinTimer != nil {
		c.joinTimer.Stop()
		c.joinTimer = nil
	}
	c.unlock()

	if !enable {
		_, err := c.link.Request(ctx, NewRequest(FuncAddNodeToNetwork, modeStop, 0), false)
		return err
	}

	if duration <= 0 || duration > 254 {
		duration = 254
	}
	if _, err := c.link.Request(ctx, NewRequest(FuncAddNodeToNetwork, modeAny|optionHighPower, c.nextCallbackID()), false); err != nil {
		return fmt.Errorf("start inclusion: %w", err)
	}

	c.mu.Lock()
	c.joinTimer = time.AfterFunc(time.Duration(duration)*time.Second, c.stopInclusion)
	c.unlock()
	log.Info().Int("seconds", duration).Msg("Inclusion started")
	return nil
}

func (c *Controller) IsConnected() bool {
	select {
	case <-c.stopChan:
		return false
	default:
	}
	return c.link.IsConnected()
}

func (c *Controller) Close() {
	c.stopOnce.Do(func() {
		close(c.stopChan)

		c.mu.Lock()
		for _, t := range []*time.Timer{c.joinTimer, c.excludeTimer} {
			if t != nil {
				t.Stop()
			}
		}
		c.unlock()

		if err := c.link.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close serial link")
		}
		c.wg.Wait()
		log.Info().Msg("Z-Wave controller closed")
	})
}

// --- unit level access ---

// SendCommand encodes op for a unit and transmits it. Ops the unit cannot
// encode fail with device.ErrUnsupported and operands that do not fit
// their byte fail with device.ErrValidation; nothing is sent either way.
// Ignored ops succeed without sending.
func (c *Controller) SendCommand(ctx context.Context, id string, op unit.Op, value1, value2 uint32) error {
	if err := op.CheckOperands(value1, value2); err != nil {
		return fmt.Errorf("%w: %v", device.ErrValidation, err)
	}

	c.mu.Lock()
	d, ok := c.findLocked(id)
	if !ok {
		c.unlock()
		return device.ErrNotFound
	}
	name := d.Base().Name()
	frame, handled := d.BuildSetFrame(op, value1, value2, c.nextCallbackID())
	if !handled {
		frame, handled = d.BuildGetFrame(op, value1, value2, c.nextCallbackID())
	}
	c.unlock()

	switch {
	case op.Ignored():
		log.Info().Str("unit", name).Stringer("op", op).Msg("Operation has no wire encoding, nothing sent")
		return nil
	case !handled:
		return fmt.Errorf("%s on %s: %w", op, name, device.ErrUnsupported)
	}
	log.Debug().Str("unit", name).Stringer("op", op).Hex("frame", frame.Bytes).Msg("Sending command")
	return c.transmit(ctx, frame)
}

// Units returns a snapshot of every unit ordered by node id.
func (c *Controller) Units() []UnitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	infos := make([]UnitInfo, 0, len(c.units))
	for _, id := range c.sortedIDsLocked() {
		d := c.units[id]
		u := d.Base()
		infos = append(infos, UnitInfo{
			ID:           u.ID(),
			Name:         u.Name(),
			Kind:         d.Kind().String(),
			TypeInfo:     u.TypeInfo(),
			Status:       u.Status().String(),
			Retries:      u.RetryCount(),
			Lag:          u.LagTime(),
			PollPeriod:   u.PollPeriod(),
			NextPoll:     u.NextPollTime(),
			Capabilities: u.Capabilities().Names(),
			Listening:    u.IsListening(),
			Generic:      u.GenericClass(),
			Specific:     u.SpecificClass(),
		})
	}
	return infos
}

func (c *Controller) sortedIDsLocked() []uint8 {
	ids := make([]uint8, 0, len(c.units))
	for id := range c.units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- device.EventSubscriber interface ---

func (c *Controller) Subscribe() chan device.DiscoveryEvent {
	ch := make(chan device.DiscoveryEvent, subscriberBuffer)
	c.subscribersMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subscribersMu.Unlock()
	return ch
}

func (c *Controller) Unsubscribe(ch chan device.DiscoveryEvent) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// publishEvent sends a discovery event to all subscribers.
func (c *Controller) publishEvent(evt device.DiscoveryEvent) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
