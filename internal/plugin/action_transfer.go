package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fystack/rooch-wallet-plugin/internal/assets"
	"github.com/fystack/rooch-wallet-plugin/internal/transfer"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

const SendCoinActionName = "SEND_COIN"

// transferContent is the object the model extracts from the conversation.
type transferContent struct {
	Recipient string           `json:"recipient" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"    validate:"required"`
	Symbol    string           `json:"symbol,omitempty"`
	Index     *int             `json:"index,omitempty" validate:"omitempty,gt=0"`
}

func (c transferContent) symbol() string {
	if c.Symbol == "" {
		return constant.GasCoinSymbol
	}
	return c.Symbol
}

// NewSendCoinAction builds the SEND_COIN action over clients.
func NewSendCoinAction(clients ClientFactory) Action {
	return Action{
		Name:        SendCoinActionName,
		Similes:     []string{"TRANSFER_COIN", "TRANSFER_COINS", "SEND_COINS", "PAY"},
		Description: "Transfer coins from the agent's wallet to another address",
		Validate: func(context.Context, Runtime, *Memory) bool {
			return true
		},
		Handler: func(ctx context.Context, runtime Runtime, message *Memory, state State, callback HandlerCallback) (bool, error) {
			return handleSendCoin(ctx, clients, runtime, message, state, callback)
		},
		Examples: [][]ActionExample{
			{
				{User: "{{user1}}", Content: Content{Text: "Send 1 RGAS to 0x4f2e63be8e7fe287836e29cde6f3d5cbc96eefd0c0e3f3747668faa2ae7324b0"}},
				{User: "{{user2}}", Content: Content{Text: "I'll send 1 RGAS now...", Action: SendCoinActionName}},
			},
		},
	}
}

func handleSendCoin(
	ctx context.Context,
	clients ClientFactory,
	runtime Runtime,
	message *Memory,
	state State,
	callback HandlerCallback,
) (bool, error) {
	logger.Info("Starting Rooch SEND_COIN handler")

	if state == nil {
		state = State{}
	}
	if _, ok := state["recentMessages"]; !ok && message != nil {
		state["recentMessages"] = message.Content.Text
	}

	content, err := extractTransfer(ctx, runtime, state)
	if err != nil {
		logger.Error("Error during coin transfer", "error", err)
		return false, respond(ctx, callback, Content{
			Text:    "Error transferring coins: " + err.Error(),
			Content: map[string]any{"error": err.Error()},
		})
	}

	client, err := clients(runtime)
	if err != nil {
		logger.Error("Error during coin transfer", "error", err)
		return false, respond(ctx, callback, Content{
			Text:    "Error transferring coins: " + err.Error(),
			Content: map[string]any{"error": err.Error()},
		})
	}

	svc := transfer.NewService(assets.NewReader(client), client, runtime)
	result := svc.Transfer(ctx, transfer.Params{
		Recipient: content.Recipient,
		Amount:    *content.Amount,
		Symbol:    content.Symbol,
		Index:     content.Index,
	})

	if !result.Success {
		return false, respond(ctx, callback, Content{
			Text:    "Error transferring coins: " + result.Error,
			Content: map[string]any{"error": result.Error},
		})
	}

	return true, respond(ctx, callback, Content{
		Text: fmt.Sprintf("Successfully transferred %s %s to %s", content.Amount.String(), content.symbol(), content.Recipient),
		Content: map[string]any{
			"success":   true,
			"amount":    content.Amount.String(),
			"recipient": content.Recipient,
			"symbol":    content.symbol(),
			"txOrder":   result.TxOrder,
		},
	})
}

func extractTransfer(ctx context.Context, runtime Runtime, state State) (*transferContent, error) {
	reply, err := runtime.GenerateObject(ctx, TransferTemplate, state)
	if err != nil {
		return nil, fmt.Errorf("generate transfer details: %w", err)
	}

	var content transferContent
	if err := json.Unmarshal(ExtractJSON(reply), &content); err != nil {
		return nil, fmt.Errorf("decode transfer details: %w", err)
	}
	if err := validate.Struct(&content); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid transfer details: %s failed on %s", verrs[0].Field(), verrs[0].Tag())
		}
		return nil, err
	}
	return &content, nil
}

func respond(ctx context.Context, callback HandlerCallback, content Content) error {
	if callback == nil {
		return nil
	}
	return callback(ctx, content)
}
