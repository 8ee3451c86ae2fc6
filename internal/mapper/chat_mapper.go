package mapper

import (
	"encoding/json"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	chat := entity.NewChat(c.Id, c.Title, c.CreatedAt)
	return &chat
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	return &model.Chat{
		Id:        c.Id,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ChatToResponse(c *entity.Chat) *dto.ChatResponse {
	if c == nil {
		return nil
	}

	return &dto.ChatResponse{
		Id:        c.Id,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ChatsToResponse(chats []*entity.Chat) []*dto.ChatResponse {
	res := make([]*dto.ChatResponse, 0, len(chats))
	for _, c := range chats {
		res = append(res, m.ChatToResponse(c))
	}
	return res
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) (*entity.Message, error) {
	if msg == nil {
		return nil, nil
	}

	metadata, err := m.MetadataFromJSON(msg.Metadata)
	if err != nil {
		return nil, err
	}

	return &entity.Message{
		Id:             msg.Id,
		ChatId:         msg.ChatId,
		Role:           entity.MessageRole(msg.Role),
		Content:        msg.Content,
		ImageUrl:       msg.ImageUrl,
		EditedImageUrl: msg.EditedImageUrl,
		Metadata:       metadata,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) (*model.Message, error) {
	if msg == nil {
		return nil, nil
	}

	metadata, err := m.MetadataToJSON(msg.Metadata)
	if err != nil {
		return nil, err
	}

	return &model.Message{
		Id:             msg.Id,
		ChatId:         msg.ChatId,
		Role:           string(msg.Role),
		Content:        msg.Content,
		ImageUrl:       msg.ImageUrl,
		EditedImageUrl: msg.EditedImageUrl,
		Metadata:       metadata,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MetadataFromJSON(raw datatypes.JSON) (*entity.MessageMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var metadata entity.MessageMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (m *ChatMapper) MetadataToJSON(metadata *entity.MessageMetadata) (datatypes.JSON, error) {
	if metadata == nil {
		return nil, nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (m *ChatMapper) MessageToResponse(msg *entity.Message) *dto.MessageResponse {
	if msg == nil {
		return nil
	}

	return &dto.MessageResponse{
		Id:             msg.Id,
		ChatId:         msg.ChatId,
		Role:           string(msg.Role),
		Content:        msg.Content,
		ImageUrl:       msg.ImageUrl,
		EditedImageUrl: msg.EditedImageUrl,
		Metadata:       m.MetadataToDTO(msg.Metadata),
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToResponse(messages []*entity.Message) []*dto.MessageResponse {
	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, m.MessageToResponse(msg))
	}
	return res
}

func (m *ChatMapper) MetadataToDTO(metadata *entity.MessageMetadata) *dto.MessageMetadataDTO {
	if metadata == nil {
		return nil
	}

	return &dto.MessageMetadataDTO{
		Status:         string(metadata.Status),
		Error:          metadata.Error,
		OriginalPrompt: metadata.OriginalPrompt,
		Seed:           metadata.Seed,
	}
}

func (m *ChatMapper) MetadataFromDTO(metadata *dto.MessageMetadataDTO) *entity.MessageMetadata {
	if metadata == nil {
		return nil
	}

	return &entity.MessageMetadata{
		Status:         entity.MessageStatus(metadata.Status),
		Error:          metadata.Error,
		OriginalPrompt: metadata.OriginalPrompt,
		Seed:           metadata.Seed,
	}
}

func (m *ChatMapper) MessageStatusToResponse(msg *entity.Message) *dto.MessageStatusResponse {
	if msg == nil {
		return nil
	}

	res := &dto.MessageStatusResponse{
		Id:             msg.Id,
		Status:         string(msg.Status()),
		EditedImageUrl: msg.EditedImageUrl,
	}
	if msg.Metadata != nil {
		res.Error = msg.Metadata.Error
	}
	return res
}
