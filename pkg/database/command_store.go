package database

import (
	"context"
	"errors"

	"avrctl/pkg/command"
	"avrctl/pkg/models"

	"gorm.io/gorm"
)

// CommandStore resolves stored commands for the executor. It is read-only:
// authoring Receiver/Command/CommandParameter rows is the admin API's concern.
type CommandStore struct {
	db *gorm.DB
}

func NewCommandStore(db *gorm.DB) *CommandStore {
	return &CommandStore{db: db}
}

// GetCommand resolves the (receiver model, action name) compound key to
// exactly one command with its receiver and parameter rows populated. Unknown
// models and unknown action names both surface as a not-found error so the
// caller can tell which name to fix.
func (store *CommandStore) GetCommand(ctx context.Context, model, actionName string) (*models.Command, error) {
	receiver, err := store.getReceiver(ctx, model)
	if err != nil {
		return nil, err
	}

	var cmd models.Command
	err = store.db.WithContext(ctx).
		Preload("Parameters").
		Where("receiver_id = ? AND action_name = ?", receiver.ID, actionName).
		First(&cmd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &command.Error{
				Kind:    command.KindNotFound,
				Message: "receiver " + model + " has no command " + actionName,
			}
		}
		return nil, err
	}

	cmd.Receiver = receiver
	return &cmd, nil
}

// ListCommands returns all commands of a receiver model with their parameter
// declarations, for the caller-facing command catalog.
func (store *CommandStore) ListCommands(ctx context.Context, model string) ([]*models.Command, error) {
	receiver, err := store.getReceiver(ctx, model)
	if err != nil {
		return nil, err
	}

	var cmds []*models.Command
	err = store.db.WithContext(ctx).
		Preload("Parameters").
		Where("receiver_id = ?", receiver.ID).
		Order("action_type, action_name").
		Find(&cmds).Error
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

func (store *CommandStore) getReceiver(ctx context.Context, model string) (*models.Receiver, error) {
	var receiver models.Receiver
	err := store.db.WithContext(ctx).Where("model = ?", model).First(&receiver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &command.Error{
				Kind:    command.KindNotFound,
				Message: "unknown receiver model " + model,
			}
		}
		return nil, err
	}
	return &receiver, nil
}
