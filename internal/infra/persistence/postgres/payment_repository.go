package postgres

import (
	"context"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// paymentRepository implements the domain.PaymentRepository interface.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository is the constructor for paymentRepository.
func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// Create appends a payment record.
func (repo *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	paymentM := fromPaymentDomain(payment)

	if err := repo.db.WithContext(ctx).Create(paymentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound
		}

		return translateExecError(err, "failed to record payment")
	}

	// Update the entity with generated values
	payment.ID = paymentM.ID
	payment.CreatedAt = paymentM.CreatedAt

	return nil
}

// ListByIdentity returns an identity's payment history, newest first.
func (repo *paymentRepository) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.Payment, error) {
	var paymentModels []*model.PaymentModel

	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at DESC").
		Find(&paymentModels).Error
	if err != nil {
		return nil, wrapQueryError(err, "failed to list payments")
	}

	payments := make([]*entity.Payment, 0, len(paymentModels))
	for _, paymentM := range paymentModels {
		payments = append(payments, toPaymentDomain(paymentM))
	}

	return payments, nil
}

// --- Mapper Functions ---

// toPaymentDomain converts a GORM PaymentModel to a domain Payment entity.
func toPaymentDomain(data *model.PaymentModel) *entity.Payment {
	if data == nil {
		return nil
	}

	return &entity.Payment{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		Tier:       entity.Tier(data.Tier),
		AmountTWD:  data.AmountTWD,
		Reference:  data.Reference,
		CreatedAt:  data.CreatedAt,
	}
}

// fromPaymentDomain converts a domain Payment entity to a GORM PaymentModel.
func fromPaymentDomain(data *entity.Payment) *model.PaymentModel {
	if data == nil {
		return nil
	}

	return &model.PaymentModel{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		Tier:       string(data.Tier),
		AmountTWD:  data.AmountTWD,
		Reference:  data.Reference,
	}
}
