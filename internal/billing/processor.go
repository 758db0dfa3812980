package billing

import (
	"errors"
	"log/slog"
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/entitlement"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OutcomeKind tags the result of applying one webhook event.
type OutcomeKind int

const (
	// OutcomeApplied means the event granted or renewed a pro plan.
	OutcomeApplied OutcomeKind = iota
	// OutcomeDuplicate means the reference was already processed; the
	// delivery is acknowledged without further writes.
	OutcomeDuplicate
	// OutcomeIgnored means the event is authentic but carries a
	// non-success status.
	OutcomeIgnored
	// OutcomeRejected means the event is malformed or inconsistent and
	// was dropped.
	OutcomeRejected
)

type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Mailer is the outbound notification collaborator. Send failures are logged
// and never roll back a grant.
type Mailer interface {
	SendPlanActivated(to string, renewed bool, expiresAt time.Time) error
	SendRenewalReminder(to string, expiresAt time.Time) error
}

// errDuplicateInsert signals that a concurrent delivery of the same reference
// won the insert race; the storage-level unique index guarantees we cannot
// double-grant.
var errDuplicateInsert = errors.New("transaction reference already inserted")

// Processor applies authenticated payment-provider events exactly once per
// reference and transitions the user's plan state.
type Processor struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
}

func NewProcessor(db *gorm.DB, cfg *config.Config, mailer Mailer) *Processor {
	return &Processor{db: db, cfg: cfg, mailer: mailer}
}

// Process applies one parsed webhook event. raw is the request body as
// delivered, kept on the transaction row for audit. Rejected and ignored
// outcomes return a nil error: the delivery is acknowledged so the provider
// stops retrying a payload that will never become valid.
func (p *Processor) Process(webhook *dto.PaymentWebhook, raw []byte, now time.Time) (Outcome, error) {
	data := &webhook.Data

	if data.Reference == "" {
		slog.Warn("webhook event dropped", "reason", "missing_reference", "event", webhook.Event)
		return Outcome{Kind: OutcomeRejected, Reason: "missing_reference"}, nil
	}
	userID, err := uuid.Parse(data.Metadata.UserID)
	if err != nil {
		slog.Warn("webhook event dropped", "reason", "missing_user_id", "reference", data.Reference)
		return Outcome{Kind: OutcomeRejected, Reason: "missing_user_id"}, nil
	}

	var existing models.Transaction
	err = p.db.Where("reference = ?", data.Reference).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Outcome{}, err
	}

	if found && existing.UserID != userID {
		// Possible spoofed metadata: a known reference claiming a
		// different owner is never processed.
		slog.Warn("webhook user mismatch", "reference", data.Reference,
			"stored_user_id", existing.UserID, "event_user_id", userID)
		return Outcome{Kind: OutcomeRejected, Reason: "user_mismatch"}, nil
	}
	if found && existing.Status == models.TxSuccess {
		return Outcome{Kind: OutcomeDuplicate}, nil
	}

	if data.Status != models.TxSuccess {
		if found && data.Status == models.TxFailed {
			if err := p.db.Model(&existing).Updates(map[string]interface{}{
				"status":  models.TxFailed,
				"payload": datatypes.JSON(raw),
			}).Error; err != nil {
				return Outcome{}, err
			}
		}
		slog.Info("webhook event ignored", "reference", data.Reference, "status", data.Status)
		return Outcome{Kind: OutcomeIgnored, Reason: "status_" + data.Status}, nil
	}

	expiry := now.Add(time.Duration(p.cfg.ProDurationDays) * 24 * time.Hour)
	var email string
	var renewed bool

	err = p.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		email = user.Email
		renewed = entitlement.Resolve(user.Plan, user.PlanExpiresAt, now).IsPro

		updates := map[string]interface{}{
			"plan":                models.PlanPro,
			"plan_expires_at":     expiry,
			"renewal_reminded_at": nil,
		}
		if data.Customer.CustomerCode != "" {
			updates["payment_customer_code"] = data.Customer.CustomerCode
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		if found {
			return tx.Model(&models.Transaction{}).
				Where("reference = ?", data.Reference).
				Updates(map[string]interface{}{
					"status":   models.TxSuccess,
					"amount":   data.Amount,
					"currency": data.Currency,
					"payload":  datatypes.JSON(raw),
				}).Error
		}

		record := models.Transaction{
			ID:        uuid.New(),
			Reference: data.Reference,
			UserID:    userID,
			Status:    models.TxSuccess,
			Amount:    data.Amount,
			Currency:  data.Currency,
			Payload:   datatypes.JSON(raw),
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateInsert
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errDuplicateInsert) {
		return Outcome{Kind: OutcomeDuplicate, Reason: "insert_race"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	if p.mailer != nil {
		if err := p.mailer.SendPlanActivated(email, renewed, expiry); err != nil {
			slog.Warn("plan notification failed", "user_id", userID, "error", err)
		}
	}

	slog.Info("plan granted", "user_id", userID, "reference", data.Reference,
		"renewed", renewed, "expires_at", expiry)
	return Outcome{Kind: OutcomeApplied}, nil
}
