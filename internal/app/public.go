package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"redstring/internal/board"
	"redstring/internal/camera"
	"redstring/internal/kv"
	"redstring/internal/scene"
)

// Public is the read-only board visitors see, plus their suggestion form.
type Public struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time

	doc    *board.Document
	scene  *scene.Scene
	prompt Prompt
}

func NewPublic(store kv.Store, surf camera.Surface, opts Options, logger *zap.Logger) *Public {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := LoadOrDemo(store, PublicDataKey)
	if err != nil {
		logger.Warn("public board unreadable, using demo", zap.Error(err))
	}
	p := &Public{store: store, logger: logger, now: time.Now, doc: doc}
	sopts := scene.PublicOptions()
	if opts.HitWidth > 0 {
		sopts.HitWidth = opts.HitWidth
	}
	p.scene = scene.New(doc, camera.New(store, opts.CameraKey, logger), surf, sopts, p.HandleEvent)
	return p
}

func (p *Public) Document() *board.Document { return p.doc }
func (p *Public) Scene() *scene.Scene       { return p.scene }

func (p *Public) TakePrompt() Prompt {
	pr := p.prompt
	p.prompt = Prompt{}
	return pr
}

func (p *Public) HandleEvent(e scene.Event) {
	switch e := e.(type) {
	case scene.NodeDoubleClicked:
		p.prompt = Prompt{Intent: IntentDetails, ID: e.ID}
	case scene.DetailsRequested:
		p.prompt = Prompt{Intent: IntentDetails, ID: e.ID}
	}
}

// Reload picks up a board published since the view was opened.
func (p *Public) Reload() error {
	doc, found, err := LoadDocument(p.store, PublicDataKey)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	p.doc.Nodes, p.doc.Links = doc.Nodes, doc.Links
	p.scene.SetDocument(p.doc)
	return nil
}

// Suggest validates and stores a visitor suggestion.
func (p *Public) Suggest(title string, kind board.Kind, description, email string) (board.Submission, error) {
	s, err := board.NewSubmission(title, kind, description, email, p.now())
	if err != nil {
		return board.Submission{}, err
	}
	if err := AppendSubmission(p.store, s); err != nil {
		return board.Submission{}, fmt.Errorf("suggestion not sent: %w", err)
	}
	p.logger.Info("suggestion received", zap.String("id", s.ID), zap.String("title", s.Title))
	return s, nil
}
