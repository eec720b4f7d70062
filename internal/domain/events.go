package domain

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ScanPayload — тело сообщения из work_qr_queue.
type ScanPayload struct {
	Operation string   `json:"operation" validate:"required"`
	UserID    int64    `json:"userId" validate:"required"`
	QRData    ScanData `json:"qrData" validate:"required"`
}

type ScanData struct {
	ID       int64   `json:"id" validate:"required"`
	Mass     float64 `json:"m"`
	Volume   float64 `json:"v"`
	CityFrom string  `json:"city_from"`
	CityTo   string  `json:"city_to"`
}

// PreparationPayload — тело сообщения из qr_events: qrData содержит код заказа.
type PreparationPayload struct {
	Operation string `json:"operation" validate:"required,oneof=packing shipment"`
	UserID    int64  `json:"userId" validate:"required"`
	QRData    string `json:"qrData" validate:"required"`
}

// FeedbackPayload — тело сообщения из feedback_queue.
type FeedbackPayload struct {
	OrderCode     string `json:"orderCode" validate:"required"`
	Rating        string `json:"rating" validate:"required"`
	CourierChatID int64  `json:"courierChatId" validate:"required"`
	Comment       string `json:"comment"`
}

// OrderSnapshotPayload — полный снимок заказа из orders_queue со встроенной историей.
type OrderSnapshotPayload struct {
	OrderCode      string               `json:"orderCode" validate:"required"`
	Customer       CustomerPayload      `json:"customer"`
	Delivery       json.RawMessage      `json:"delivery"`
	TotalPrice     decimal.Decimal      `json:"totalPrice"`
	OrderStatus    string               `json:"orderStatus"`
	Entries        []EntryPayload       `json:"entries"`
	HistoryEntries []HistoryItemPayload `json:"historyEntries"`
}

type CustomerPayload struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	PhoneNumber string `json:"phoneNumber"`
}

type EntryPayload struct {
	EntryID             *int64          `json:"entryId"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	Weight              float64         `json:"weight"`
	BasePrice           decimal.Decimal `json:"basePrice"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	MasterProductCode   string          `json:"masterProductCode"`
	MasterProductName   string          `json:"masterProductName"`
	MerchantProductSKU  string          `json:"merchantProductSKU"`
	MerchantProductName string          `json:"merchantProductName"`
	Unit                UnitPayload     `json:"unit"`
}

type UnitPayload struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

type HistoryItemPayload struct {
	CreateDate  *int64 `json:"createDate"` // unix миллисекунды
	Action      string `json:"action"`
	UserType    string `json:"userType"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	UserPhone   string `json:"userPhone"`
	Description string `json:"description"`
}

// CourierNotification публикуется в telegram_queue после первого COMPLETED.
type CourierNotification struct {
	OrderCode       string          `json:"orderCode"`
	OrderID         int64           `json:"orderPK"`
	CourierName     string          `json:"courierName"`
	CourierEmail    string          `json:"courierEmail"`
	CourierID       int64           `json:"courierPK"`
	ChatID          *int64          `json:"chat_id"`
	CourierPhone    string          `json:"courierPhone"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"phone_number"`
	Entries         []EntryPayload  `json:"entries"`
	DeliveryInfo    json.RawMessage `json:"delivery_info,omitempty"`
}

// DecodeEvent разбирает JSON и проверяет обязательные поля.
// Любая ошибка здесь означает MalformedEvent: сообщение нельзя обработать повторно.
func DecodeEvent[T any](body []byte) (T, error) {
	var msg T
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, WrapMalformed(err)
	}
	if err := validate.Struct(&msg); err != nil {
		return msg, WrapMalformed(err)
	}
	return msg, nil
}
