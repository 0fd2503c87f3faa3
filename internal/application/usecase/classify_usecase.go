package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sewellco/hts-manager/internal/application/dto"
	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/domain"
	"github.com/sewellco/hts-manager/internal/domain/entity"
	"github.com/sewellco/hts-manager/internal/domain/hts"
	"github.com/sewellco/hts-manager/internal/domain/repository"
	"github.com/sewellco/hts-manager/pkg/config"
	"github.com/sewellco/hts-manager/pkg/logger"
)

// ClassifyUseCase orquesta la clasificación HTS: decide CUÁNDO clasificar
// (reglas de idempotencia y override manual), invoca el clasificador, persiste
// el resultado y dispara la notificación de baja confianza.
//
// Máquina de estados por producto:
//
//	Unclassified → Pending → Classified | Classified(lowConfidence)
//	cualquiera   → ManualOverride (terminal para el pipeline automático)
//
// Un error del clasificador deja el registro intacto y reclasificable.
type ClassifyUseCase struct {
	repo       repository.ProductRepository
	classifier ports.HTSClassifier
	scheduler  ports.ClassifyScheduler
	notifier   ports.Notifier
	cfg        config.ClassifyConfig
	hasAPIKey  bool
	log        *logger.Logger

	// inFlight garantiza como máximo una clasificación en curso por producto;
	// productos distintos clasifican en paralelo sin restricción.
	mu       sync.Mutex
	inFlight map[string]struct{}

	// jitter inyectable para tests deterministas
	randInt func(n int) int
}

// NewClassifyUseCase construye el orquestador.
func NewClassifyUseCase(
	repo repository.ProductRepository,
	classifier ports.HTSClassifier,
	scheduler ports.ClassifyScheduler,
	notifier ports.Notifier,
	cfg config.ClassifyConfig,
	hasAPIKey bool,
	log *logger.Logger,
) *ClassifyUseCase {
	return &ClassifyUseCase{
		repo:       repo,
		classifier: classifier,
		scheduler:  scheduler,
		notifier:   notifier,
		cfg:        cfg,
		hasAPIKey:  hasAPIKey,
		log:        log,
		inFlight:   make(map[string]struct{}),
		randInt:    rand.Intn,
	}
}

// ── Disparadores (eventos del host) ───────────────────────────────────────────

// OnProductPublished se invoca cuando el catálogo publica o actualiza un
// producto. Si la auto-clasificación está habilitada y el producto no tiene
// código (vacío o centinela), agenda una clasificación diferida; agendar de
// nuevo reemplaza la pendiente (nunca se duplica).
func (uc *ClassifyUseCase) OnProductPublished(ctx context.Context, productID string) error {
	if !uc.cfg.Enabled {
		return nil
	}
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if !product.Classification.NeedsClassification() {
		return nil // ya clasificado o con override manual
	}
	uc.scheduler.Schedule(productID, time.Duration(uc.cfg.DelaySeconds)*time.Second)
	return nil
}

// QueueBulk agenda la clasificación de varios productos con jitter aleatorio
// por producto (orden de segundos) para no exceder el rate limit del proveedor
// con una ráfaga simultánea. Devuelve solo el conteo encolado; el resultado de
// cada producto se observa después vía su estado.
func (uc *ClassifyUseCase) QueueBulk(productIDs []string) dto.BulkClassifyResponse {
	span := uc.cfg.BulkJitterMax - uc.cfg.BulkJitterMin + 1
	for _, id := range productIDs {
		delay := uc.cfg.BulkJitterMin + uc.randInt(span)
		uc.scheduler.Schedule(id, time.Duration(delay)*time.Second)
	}
	return dto.BulkClassifyResponse{Queued: len(productIDs)}
}

// ── Clasificación ─────────────────────────────────────────────────────────────

// Classify ejecuta una clasificación para el producto. Con regenerate=false se
// aplica la regla "clasificar solo si falta": un código válido existente hace
// la operación un no-op sin llamada de red (ErrAlreadyClassified). Con
// regenerate=true se fuerza una nueva clasificación, salvo override manual,
// que solo un humano puede reemplazar.
func (uc *ClassifyUseCase) Classify(ctx context.Context, productID string, regenerate bool) (*dto.ClassifyResponse, error) {
	// Precondiciones: se rechazan antes de cualquier llamada de red.
	if !uc.hasAPIKey {
		return nil, domain.ErrNoAPIKey
	}

	if !uc.acquire(productID) {
		return nil, domain.ErrClassifyInFlight
	}
	defer uc.release(productID)

	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	cls := product.Classification
	if cls.Source == entity.SourceManual && cls.HTSCode != "" {
		return nil, domain.ErrManualOverride
	}
	if !regenerate && !cls.NeedsClassification() {
		return nil, domain.ErrAlreadyClassified
	}

	prompt := hts.BuildPrompt(product.Snapshot())

	result, err := uc.classifier.Classify(ctx, prompt)
	if err != nil {
		// Sin escritura parcial: el registro queda como estaba, elegible para
		// un intento futuro. Visible para el operador, no fatal para el host.
		uc.logClassifyFailure(productID, err)
		return nil, err
	}

	now := time.Now()
	confidence := result.Confidence
	country := cls.CountryOfOrigin
	if country == "" {
		country = hts.DefaultCountryOfOrigin
	}

	written, err := uc.repo.SetAIClassification(ctx, productID, entity.Classification{
		HTSCode:         result.HTSCode,
		CountryOfOrigin: country,
		Confidence:      &confidence,
		Source:          entity.SourceAI,
		Reasoning:       result.Reasoning,
		UpdatedAt:       &now,
	})
	if err != nil {
		return nil, fmt.Errorf("persistir clasificación: %w", err)
	}
	if !written {
		// Carrera diseñada: un humano escribió un código manual mientras la
		// llamada estaba en vuelo. El resultado automático pierde y se descarta
		// en silencio; no es un error.
		uc.log.Info().
			Str("product_id", productID).
			Str("hts_code", result.HTSCode).
			Msg("resultado automático descartado: override manual durante la clasificación")
		return nil, domain.ErrManualOverride
	}

	low := result.Confidence < uc.cfg.ConfidenceThreshold // estricto: == umbral no es baja
	uc.log.Info().
		Str("product_id", productID).
		Str("hts_code", result.HTSCode).
		Float64("confidence", result.Confidence).
		Bool("low_confidence", low).
		Msg("producto clasificado")

	if low {
		uc.notifyLowConfidence(product, result)
	}

	return &dto.ClassifyResponse{
		ProductID:     productID,
		HTSCode:       result.HTSCode,
		Confidence:    result.Confidence,
		Reasoning:     result.Reasoning,
		LowConfidence: low,
	}, nil
}

// RunScheduled es el callback que ejecuta el scheduler. Los fallos en segundo
// plano son silenciosos para el usuario final pero quedan en el log del
// operador; los no-ops de idempotencia ni siquiera son warning.
func (uc *ClassifyUseCase) RunScheduled(productID string) {
	ctx := context.Background()
	_, err := uc.Classify(ctx, productID, false)
	switch err {
	case nil, domain.ErrAlreadyClassified, domain.ErrManualOverride:
		// nada que reportar
	default:
		// logClassifyFailure ya registró los errores del clasificador; esto
		// cubre precondiciones y persistencia.
		if _, ok := ports.AsClassifyError(err); !ok {
			uc.log.Warn().Err(err).Str("product_id", productID).Msg("clasificación programada fallida")
		}
	}
}

// SetManualCode aplica un override humano: valida el formato con el mismo
// patrón que el pipeline automático, cancela cualquier intento pendiente y
// limpia la confianza (un código manual no es salida de IA y el pipeline no
// debe tratarlo como baja confianza).
func (uc *ClassifyUseCase) SetManualCode(ctx context.Context, productID string, in dto.SetManualCodeRequest) error {
	if !hts.ValidCode(in.HTSCode) {
		return domain.ErrInvalidHTSCode
	}
	country := in.CountryOfOrigin
	if country == "" {
		country = hts.DefaultCountryOfOrigin
	} else if !hts.ValidCountry(country) {
		return domain.ErrInvalidCountryCode
	} else {
		country = hts.NormalizeCountry(country)
	}

	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	// Un intento automático pendiente queda obsoleto; el que esté en vuelo se
	// descartará en el write-time check del repositorio.
	uc.scheduler.Cancel(productID)

	return uc.repo.SetManualCode(ctx, productID, in.HTSCode, country)
}

// Status devuelve el resumen por estado para el operador.
func (uc *ClassifyUseCase) Status(ctx context.Context) (*dto.ClassifyStatusResponse, error) {
	counts, err := uc.repo.CountByClassification(ctx, uc.cfg.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}
	return &dto.ClassifyStatusResponse{
		Total:         counts.Total,
		Classified:    counts.Classified,
		LowConfidence: counts.LowConfidence,
		Manual:        counts.Manual,
		Unclassified:  counts.Unclassified,
		Threshold:     uc.cfg.ConfidenceThreshold,
	}, nil
}

// ── Internos ──────────────────────────────────────────────────────────────────

func (uc *ClassifyUseCase) acquire(productID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[productID]; busy {
		return false
	}
	uc.inFlight[productID] = struct{}{}
	return true
}

func (uc *ClassifyUseCase) release(productID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, productID)
}

func (uc *ClassifyUseCase) logClassifyFailure(productID string, err error) {
	ev := uc.log.Warn().Str("product_id", productID)
	if ce, ok := ports.AsClassifyError(err); ok {
		ev = ev.Str("kind", string(ce.Kind))
		if ce.Status != 0 {
			ev = ev.Int("status", ce.Status)
		}
		if ce.Snippet != "" {
			ev = ev.Str("snippet", ce.Snippet)
		}
	}
	ev.Err(err).Msg("clasificación fallida; el producto queda reclasificable")
}

func (uc *ClassifyUseCase) notifyLowConfidence(product *entity.Product, result *ports.ClassificationResult) {
	reviewLink := ""
	if uc.cfg.ReviewURLBase != "" {
		reviewLink = uc.cfg.ReviewURLBase + product.ID
	}
	alert := ports.LowConfidenceAlert{
		ProductID:         product.ID,
		ProductName:       product.Name,
		SKU:               product.SKU,
		HTSCode:           result.HTSCode,
		ConfidencePercent: int(result.Confidence * 100),
		Reasoning:         result.Reasoning,
		ReviewLink:        reviewLink,
	}
	// Fallo de entrega no-fatal: se registra y se sigue.
	if err := uc.notifier.NotifyLowConfidence(alert); err != nil {
		uc.log.Warn().Err(err).Str("product_id", product.ID).Msg("notificación de baja confianza no entregada")
	}
}
