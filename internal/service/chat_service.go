package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/foliochat/internal/ai"
	"github.com/xxxsen/foliochat/internal/model"
	appErr "github.com/xxxsen/foliochat/internal/pkg/errors"
	"github.com/xxxsen/foliochat/internal/profile"
	"github.com/xxxsen/foliochat/internal/rag"
	"github.com/xxxsen/foliochat/internal/vectorstore"
)

const defaultCatalogScanLimit = 2000

type ChatServiceConfig struct {
	Polarity    model.ScorePolarity
	Structured  bool
	PromptPills bool
	Limits      rag.PillLimits
	// CatalogScanLimit bounds the fragment scan used when the store has no catalog query.
	CatalogScanLimit int
}

type Source struct {
	Source     string  `json:"source"`
	Section    *string `json:"section"`
	Similarity float64 `json:"similarity"`
}

type ChatReply struct {
	Reply   string       `json:"reply"`
	Sources []Source     `json:"sources"`
	Pills   []model.Pill `json:"bestSources,omitempty"`
}

// ChatService answers one visitor turn. It holds no per-conversation state;
// every call is driven by the message history it is given.
type ChatService struct {
	profile   *profile.Profile
	retriever *Retriever
	generator ai.IGenerator
	store     VectorStore
	cfg       ChatServiceConfig
}

func NewChatService(p *profile.Profile, retriever *Retriever, generator ai.IGenerator, store VectorStore, cfg ChatServiceConfig) *ChatService {
	if !cfg.Polarity.Valid() {
		cfg.Polarity = model.PolarityDistance
	}
	if cfg.CatalogScanLimit <= 0 {
		cfg.CatalogScanLimit = defaultCatalogScanLimit
	}
	return &ChatService{
		profile:   p,
		retriever: retriever,
		generator: generator,
		store:     store,
		cfg:       cfg,
	}
}

func (s *ChatService) Reply(ctx context.Context, msgs []model.Message) (*ChatReply, error) {
	cont := rag.ResolveContinuity(msgs, s.profile.ShortTimeline)
	if cont.Question == "" {
		return nil, fmt.Errorf("no user question: %w", appErr.ErrInvalid)
	}
	if cont.Shortcut != nil {
		logutil.GetLogger(ctx).Info("short timeline shortcut")
		out := &ChatReply{Reply: cont.Shortcut.Reply, Sources: []Source{}}
		if !cont.Shortcut.Pill.IsZero() {
			out.Pills = []model.Pill{cont.Shortcut.Pill}
		}
		return out, nil
	}

	intent := rag.Classify(cont.EffectiveQuery, s.profile.DirectEntities)
	logger := logutil.GetLogger(ctx).With(
		zap.String("intent", string(intent.Kind)),
		zap.Bool("fulfilling_offer", cont.FulfillingOffer),
	)

	var frags []model.RetrievedFragment
	if intent.Kind != model.IntentContact {
		var err error
		frags, err = s.retriever.Retrieve(ctx, cont.EffectiveQuery, intent)
		if err != nil {
			return nil, err
		}
	}
	conv := s.profile.Conventions
	docs := rag.Aggregate(frags, s.cfg.Polarity, conv)

	contact := intent.Kind == model.IntentContact || rag.IsContact(cont.EffectiveQuery)
	contextText := rag.BuildContext(frags)
	if contact {
		contextText = rag.ContactContext(s.profile.ContactBlock)
	}

	var catalog []model.DocMeta
	if s.needsCatalog(intent) {
		catalog = s.catalog(ctx)
	}

	prompt := rag.BuildPrompt(rag.PromptInput{
		SystemPrompt: s.profile.SystemPrompt,
		Context:      contextText,
		Intent:       intent,
		Contact:      contact,
		Continuity:   cont,
		Structured:   s.cfg.Structured,
		CaseStudies:  caseStudyTitles(catalog, docs, s.profile.CaseStudyNames()),
	})
	raw, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		return nil, collaboratorErr("complete", err)
	}

	answer := raw
	var referenced []string
	if s.cfg.Structured {
		parsed, perr := rag.ParseStructured(raw)
		if perr != nil {
			logger.Warn("structured completion unusable, using raw text", zap.Error(perr))
		} else {
			answer = parsed.Answer
			referenced = parsed.Referenced
		}
	}
	reply := rag.SanitizeReply(answer)
	if reply == "" {
		reply = rag.EmptyReply
	}

	pills := rag.SelectPills(rag.SelectInput{
		Intent:       intent,
		Docs:         docs,
		Fragments:    frags,
		Polarity:     s.cfg.Polarity,
		ContactPills: s.profile.ContactPills,
		TimelinePill: s.profile.TimelinePill,
		PromptPills:  s.cfg.PromptPills,
		Catalog:      catalog,
		Referenced:   referenced,
		Limits:       s.cfg.Limits,
	})
	logger.Info("chat reply composed",
		zap.Int("fragments", len(frags)),
		zap.Int("documents", len(docs)),
		zap.Int("pills", len(pills)),
	)
	return &ChatReply{Reply: reply, Sources: sources(frags), Pills: pills}, nil
}

func (s *ChatService) needsCatalog(intent model.Intent) bool {
	if !s.cfg.PromptPills {
		return false
	}
	return intent.Kind == model.IntentListDocuments || (intent.Kind == model.IntentGeneral && s.cfg.Structured)
}

// catalog lists every case study: the direct query first, then a scan of
// raw fragments. Nil means neither worked and callers use the retrieved documents.
func (s *ChatService) catalog(ctx context.Context) []model.DocMeta {
	logger := logutil.GetLogger(ctx)
	metas, err := s.store.ListCaseStudies(ctx)
	if err == nil {
		return metas
	}
	if !errors.Is(err, vectorstore.ErrUnsupported) {
		logger.Warn("list case studies failed, scanning fragments", zap.Error(err))
	}
	frags, err := s.store.ScanFragments(ctx, s.cfg.CatalogScanLimit)
	if err != nil {
		logger.Error("scan fragments failed, using retrieved documents", zap.Error(err))
		return nil
	}
	docs := rag.FilterType(rag.Aggregate(frags, s.cfg.Polarity, s.profile.Conventions), model.DocTypeCaseStudy)
	out := make([]model.DocMeta, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Meta)
	}
	return out
}

// caseStudyTitles names the case studies a structured answer may reference:
// catalog (or retrieved) titles first, then the persona's named entities.
func caseStudyTitles(catalog []model.DocMeta, docs []model.ResolvedDocument, named []string) []string {
	if catalog == nil {
		for _, d := range rag.FilterType(docs, model.DocTypeCaseStudy) {
			catalog = append(catalog, d.Meta)
		}
	}
	seen := make(map[string]bool, len(catalog))
	out := make([]string, 0, len(catalog))
	for _, meta := range catalog {
		title := meta.Title
		if title == "" {
			title = rag.HumanTitle(meta.Slug)
		}
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	for _, name := range named {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func sources(frags []model.RetrievedFragment) []Source {
	out := make([]Source, 0, len(frags))
	for _, f := range frags {
		src := Source{Source: f.Source, Similarity: f.Similarity}
		if f.Section != "" {
			section := f.Section
			src.Section = &section
		}
		out = append(out, src)
	}
	return out
}
