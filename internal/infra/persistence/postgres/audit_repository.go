package postgres

import (
	"context"

	"kiosk/internal/domain/entity"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// auditRepository implements the domain.AuditRepository interface.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository is the constructor for auditRepository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// Create persists an audit record. ON CONFLICT DO NOTHING on the message ID
// makes Pub/Sub push redeliveries land exactly once.
func (repo *auditRepository) Create(ctx context.Context, record *entity.AuditRecord) error {
	auditM := fromAuditRecordDomain(record)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoNothing: true,
		}).
		Create(auditM).Error
	if err != nil {
		return wrapQueryError(err, "failed to persist audit record")
	}

	return nil
}

// --- Mapper Functions ---

// fromAuditRecordDomain converts a domain AuditRecord to a GORM AuditEventModel.
func fromAuditRecordDomain(data *entity.AuditRecord) *model.AuditEventModel {
	if data == nil {
		return nil
	}

	return &model.AuditEventModel{
		ID:         data.ID,
		MessageID:  data.MessageID,
		EventType:  data.EventType,
		IdentityID: data.IdentityID,
		RequestID:  data.RequestID,
		Detail:     data.Detail,
		OccurredAt: data.OccurredAt,
	}
}
