// Package pipeline wires the full generation flow: validate the input
// PDFs, extract and model their text, extract citations through the
// citations backend, generate structured content through the generation
// backend, normalize the reply, and render the final LaTeX document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/paperforge/paperforge/internal/citations"
	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/extract"
	"github.com/paperforge/paperforge/internal/home"
	"github.com/paperforge/paperforge/internal/llmcall"
	"github.com/paperforge/paperforge/internal/normalize"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/prompts"
	"github.com/paperforge/paperforge/internal/providers"
	"github.com/paperforge/paperforge/internal/render"
)

// Request describes one generation run.
type Request struct {
	PaperPaths   []string
	TemplatePath string
	Kind         doc.Kind
}

// Result carries every artifact a run produced. SavedPath is empty until
// Save runs, and stays empty when the render produced nothing.
type Result struct {
	RunID     string
	Papers    []paper.Paper
	Template  paper.Template
	Citations []citations.Entry
	Content   normalize.Content
	Rendered  doc.Rendered
	SavedPath string
}

// ClientFactory builds an LLM client. The pipeline calls it once per run
// so no conversation state carries over between requests.
type ClientFactory func() providers.LLMClient

// Pipeline runs generation requests end to end.
type Pipeline struct {
	cfg      *config.Config
	home     *home.Dir
	logger   *slog.Logger
	recorder *llmcall.Recorder

	newGeneration ClientFactory
	newCitations  ClientFactory
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerationFactory overrides the generation backend client factory.
func WithGenerationFactory(f ClientFactory) Option {
	return func(p *Pipeline) { p.newGeneration = f }
}

// WithCitationsFactory overrides the citations backend client factory.
func WithCitationsFactory(f ClientFactory) Option {
	return func(p *Pipeline) { p.newCitations = f }
}

// WithRecorder overrides the LLM call recorder.
func WithRecorder(rec *llmcall.Recorder) Option {
	return func(p *Pipeline) { p.recorder = rec }
}

// New creates a Pipeline. By default the generation backend is Groq, the
// citations backend is Gemini, and LLM calls are recorded under the home
// directory.
func New(cfg *config.Config, homeDir *home.Dir, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		cfg:    cfg,
		home:   homeDir,
		logger: logger,
		newGeneration: func() providers.LLMClient {
			b := cfg.Backends.Generation
			return providers.NewGroqClient(providers.GroqConfig{
				APIKey:       b.APIKey,
				BaseURL:      b.BaseURL,
				DefaultModel: b.Model,
				Timeout:      b.Timeout,
			})
		},
		newCitations: func() providers.LLMClient {
			b := cfg.Backends.Citations
			return providers.NewGeminiClient(providers.GeminiConfig{
				APIKey:       b.APIKey,
				BaseURL:      b.BaseURL,
				DefaultModel: b.Model,
				Timeout:      b.Timeout,
			})
		},
	}
	if homeDir != nil {
		p.recorder = llmcall.NewRecorder(homeDir.CallLogPath(), logger)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates the inputs, extracts their text, and hands off to Process.
// Validation failures are fatal; extraction failures are not, a bad paper
// just contributes no text.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.PaperPaths) == 0 {
		return nil, errors.New("at least one research paper is required")
	}
	if req.TemplatePath == "" {
		return nil, errors.New("a format template is required")
	}

	inputs := make([]string, 0, len(req.PaperPaths)+1)
	inputs = append(inputs, req.PaperPaths...)
	inputs = append(inputs, req.TemplatePath)
	if err := extract.ValidateInputs(inputs...); err != nil {
		return nil, err
	}

	ex := extract.New(p.cfg.Pipeline.MaxExtractChars, p.logger)

	papers := make([]paper.Paper, 0, len(req.PaperPaths))
	for _, path := range req.PaperPaths {
		papers = append(papers, paper.Model(ex.Extract(path), path))
	}
	tmpl := paper.Template{
		SourcePath: req.TemplatePath,
		Text:       ex.Extract(req.TemplatePath),
	}

	res, err := p.Process(ctx, papers, req.Kind)
	if err != nil {
		return nil, err
	}
	res.Template = tmpl
	return res, nil
}

// Process runs the post-extraction stages over already modeled papers:
// citation extraction, prompt construction, generation with retry,
// normalization, and rendering.
func (p *Pipeline) Process(ctx context.Context, papers []paper.Paper, kind doc.Kind) (*Result, error) {
	runID := uuid.New().String()
	log := p.logger.With("run_id", runID)
	log.Info("starting generation run", "kind", kind, "papers", len(papers))

	texts := make([]string, len(papers))
	for i, pp := range papers {
		texts[i] = pp.FullText
	}

	citOpts := []citations.Option{}
	if p.recorder != nil {
		citOpts = append(citOpts, citations.WithRecorder(p.recorder))
	}
	citExtractor := citations.New(p.newCitations(), p.cfg.Pipeline.CitationCount, log, citOpts...)
	entries, err := citExtractor.Extract(ctx, texts)
	if err != nil {
		return nil, err
	}

	// The literal template text never reaches the model; the prompt embeds
	// the neutral placeholder instead so template content cannot leak.
	promptText, err := prompts.Build(papers, prompts.NeutralTemplateNote, entries, kind)
	if err != nil {
		return nil, err
	}

	chatResult, err := providers.ChatWithRetry(ctx, p.newGeneration(), &providers.ChatRequest{
		Messages:  []providers.Message{{Role: "user", Content: promptText}},
		RequestID: runID,
	}, p.retryConfig(), log)
	if p.recorder != nil {
		p.recorder.RecordCall(llmcall.FromChatResult(chatResult, llmcall.RecordOptions{
			RunID: runID,
			Stage: "generation",
		}))
	}
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	content := normalize.New(kind, log).Normalize(chatResult.Content, entries)
	if content.Fallback {
		log.Warn("generation reply degraded to fallback content")
	}

	rendered, err := render.Render(content, kind, log)
	if err != nil {
		return nil, err
	}

	log.Info("generation run complete",
		"citations", len(entries),
		"sections", len(content.Sections),
		"fallback", content.Fallback,
		"latex_bytes", len(rendered.LaTeX))

	return &Result{
		RunID:     runID,
		Papers:    papers,
		Citations: entries,
		Content:   content,
		Rendered:  rendered,
	}, nil
}

// Save writes the rendered document under the home exports directory and
// records the path on the result. An empty render is never written.
func (p *Pipeline) Save(res *Result) error {
	if res.Rendered.Empty() {
		p.logger.Warn("rendered document is empty, nothing saved", "run_id", res.RunID)
		return nil
	}
	if p.home == nil {
		return errors.New("no home directory configured")
	}
	if err := p.home.EnsureExists(); err != nil {
		return err
	}

	path := p.home.ExportPath(res.Rendered.Filename)
	if err := os.WriteFile(path, []byte(res.Rendered.LaTeX), 0o644); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	res.SavedPath = path
	p.logger.Info("saved generated document", "run_id", res.RunID, "path", path)
	return nil
}

// RunAndSave is Run followed by Save.
func (p *Pipeline) RunAndSave(ctx context.Context, req Request) (*Result, error) {
	res, err := p.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.Save(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) retryConfig() providers.RetryConfig {
	return providers.RetryConfig{
		Attempts: uint(p.cfg.Pipeline.RetryAttempts),
		MinDelay: p.cfg.Pipeline.RetryMinDelay,
		MaxDelay: p.cfg.Pipeline.RetryMaxDelay,
	}
}
