// Package toggle implements the night-mode controller. It reads the stored preference
// once when the page is ready and flips it on every activation, keeping the root class
// flag, the control label and the stored value in agreement.
package toggle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/nite/app/enum"
	"github.com/umputun/nite/app/store"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// names shared with the authored markup and the stylesheet
const (
	StoreKey  = "niteMode"
	ClassName = "nite-mode"
	ControlID = "niteToggle"

	LabelActive   = "Toggle Day Mode"
	LabelInactive = "Toggle Nite Mode"
)

// ErrControlNotFound is returned by Initialize when the page has no toggle control.
var ErrControlNotFound = errors.New("toggle control not found")

// ErrNotInitialized is returned by OnActivate called before a successful Initialize.
var ErrNotInitialized = errors.New("controller not initialized")

// Store is the persistent key-value store holding the preference.
// Get must return store.ErrNotFound for a key never written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Page is the document driven by the controller. Class methods act on the root element.
type Page interface {
	HasElement(id string) bool
	SetText(id, text string)
	AddClass(name string)
	ToggleClass(name string) bool
	HasClass(name string) bool
}

// Controller binds one page to the stored preference.
// Not safe for concurrent use, the host serializes calls.
type Controller struct {
	store Store
	page  Page
	ready bool
}

// New makes a controller for the page backed by the store.
func New(st Store, p Page) *Controller {
	return &Controller{store: st, page: p}
}

// Initialize applies the stored preference to the page. Only "enabled" changes anything,
// for any other value the class and the authored label are left as they are.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.page.HasElement(ControlID) {
		return fmt.Errorf("initialize: %w: #%s", ErrControlNotFound, ControlID)
	}

	stored, err := readStored(ctx, c.store)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if enum.ModeFromStored(stored) == enum.ModeEnabled {
		c.page.AddClass(ClassName)
		c.page.SetText(ControlID, LabelActive)
	}
	c.ready = true
	log.Printf("[DEBUG] initialized with stored %s=%q", StoreKey, stored)
	return nil
}

// OnActivate flips the class flag, sets the matching label and persists the new mode.
func (c *Controller) OnActivate(ctx context.Context) error {
	if !c.ready {
		return ErrNotInitialized
	}

	mode := enum.ModeDisabled
	label := LabelInactive
	if c.page.ToggleClass(ClassName) {
		mode, label = enum.ModeEnabled, LabelActive
	}
	c.page.SetText(ControlID, label)

	if err := c.store.Set(ctx, StoreKey, []byte(mode.String())); err != nil {
		return fmt.Errorf("activate: failed to persist %s=%s: %w", StoreKey, mode, err)
	}
	log.Printf("[DEBUG] toggled, %s=%s", StoreKey, mode)
	return nil
}

// Mode reports the visual state, derived from the root class flag.
func (c *Controller) Mode() enum.Mode {
	if c.page.HasClass(ClassName) {
		return enum.ModeEnabled
	}
	return enum.ModeDisabled
}

// Stored returns the persisted mode, absent or unknown values read as disabled.
func Stored(ctx context.Context, st Store) (enum.Mode, error) {
	v, err := readStored(ctx, st)
	if err != nil {
		return enum.ModeDisabled, err
	}
	return enum.ModeFromStored(v), nil
}

// readStored returns the raw stored value, empty if it was never written.
func readStored(ctx context.Context, st Store) (string, error) {
	v, err := st.Get(ctx, StoreKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", StoreKey, err)
	}
	return string(v), nil
}
