package implementation

import (
	"context"
	"errors"
	"time"

	"dreambees-be/internal/entity"
	"dreambees-be/internal/mapper"
	"dreambees-be/internal/model"
	"dreambees-be/internal/repository/contract"
	"dreambees-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, data contract.CreateMessageData) (*entity.Message, error) {
	m, err := r.mapper.MessageToModel(&entity.Message{
		ChatId:         data.ChatId,
		Role:           data.Role,
		Content:        data.Content,
		ImageUrl:       data.ImageUrl,
		EditedImageUrl: data.EditedImageUrl,
		Metadata:       data.Metadata,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Omit("Chat").Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, contract.ErrChatNotFound
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(m)
}

func (r *MessageRepositoryImpl) FindByChatId(ctx context.Context, chatId int64) ([]*entity.Message, error) {
	specs := append([]specification.Specification{specification.ByChatID{ChatID: chatId}}, specification.Oldest()...)

	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Message, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.MessageToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *MessageRepositoryImpl) FindById(ctx context.Context, id int64) (*entity.Message, error) {
	var m model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m)
}

// Update writes only the columns named by the patch.
func (r *MessageRepositoryImpl) Update(ctx context.Context, id int64, patch entity.MessagePatch) (*entity.Message, error) {
	current, err := r.FindById(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := current.Apply(patch)
	columns := map[string]interface{}{}
	if patch.ImageUrl.Present {
		columns["image_url"] = updated.ImageUrl
	}
	if patch.EditedImageUrl.Present {
		columns["edited_image_url"] = updated.EditedImageUrl
	}
	if patch.Metadata.Present {
		metadata, err := r.mapper.MetadataToJSON(updated.Metadata)
		if err != nil {
			return nil, err
		}
		columns["metadata"] = metadata
	}

	res := r.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.FindById(ctx, id)
}

func (r *MessageRepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Message{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *MessageRepositoryImpl) DeleteByChatId(ctx context.Context, chatId int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("chat_id = ?", chatId).Delete(&model.Message{})
	return res.RowsAffected, res.Error
}
