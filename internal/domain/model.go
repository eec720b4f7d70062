package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkType string

const (
	WorkTypeLoad   WorkType = "load"
	WorkTypeUnload WorkType = "unload"
)

type Region struct {
	ID   int64
	Name string
}

// Tariff — ставка баллов для одного региона (не больше одного тарифа на регион).
type Tariff struct {
	ID              int64
	RegionID        int64
	PointsPerMass   decimal.Decimal // баллы за 1 т
	PointsPerVolume decimal.Decimal // баллы за 1 м³
}

type Worker struct {
	ID          int64
	Username    string
	Email       string
	PhoneNumber string
	ChatID      *int64
	RegionID    *int64
	RegionName  string
	// Placeholder помечает учётки, созданные автоматически из истории заказа;
	// такие записи проверяются вручную.
	Placeholder bool
}

type Cargo struct {
	ID           int64
	ExternalID   int64
	Mass         float64
	Volume       float64
	RegionFromID *int64
	RegionToID   *int64
	CreatedAt    time.Time
}

// WorkUnit — одна погрузка/разгрузка груза в одном регионе.
// total_score считается один раз при создании и больше не меняется.
type WorkUnit struct {
	ID          int64
	CargoID     int64
	RegionID    int64
	WorkType    WorkType
	MassUnits   float64
	VolumeUnits float64
	TotalScore  decimal.Decimal
	CreatedAt   time.Time
}

type WorkDistribution struct {
	ID         int64
	WorkUnitID int64
	WorkerID   int64
	ScoreShare decimal.Decimal
	ScannedAt  time.Time
}

type Order struct {
	ID                  int64
	OrderCode           string
	CustomerFirstname   string
	CustomerLastname    string
	PhoneNumber         string
	TotalPrice          decimal.Decimal
	OrderStatus         string
	RawPayload          []byte
	CompletionGrantedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type OrderEntry struct {
	ID                  int64
	OrderID             int64
	EntryID             *int64
	Name                string
	Quantity            int
	Weight              float64
	BasePrice           decimal.Decimal
	TotalPrice          decimal.Decimal
	MasterProductCode   string
	MasterProductName   string
	MerchantProductSKU  string
	MerchantProductName string
	UnitCode            string
	UnitDisplayName     string
	UnitType            string
	RawEntry            []byte
}

type OrderHistory struct {
	ID          int64
	OrderID     int64
	CreateDate  time.Time
	Action      string
	UserType    string
	UserName    string
	UserEmail   string
	UserPhone   string
	Description string
	RawData     []byte
	ProcessedBy *int64
}

type PreparationType string

const (
	PreparationPacking  PreparationType = "packing"
	PreparationShipment PreparationType = "shipment"
)

type OrderPreparation struct {
	ID              int64
	OrderCode       string
	PreparationType PreparationType
	SourceChatID    int64
	ExecutorID      *int64
	CreatedAt       time.Time
}

type Sentiment string

const (
	SentimentExcellent    Sentiment = "excellent"
	SentimentNotExcellent Sentiment = "not_excellent"
)

type ConsumerSentiment struct {
	ID        int64
	OrderID   int64
	CourierID *int64
	Sentiment Sentiment
	Comment   string
	CreatedAt time.Time
}

type DeliveryProof struct {
	ID          int64
	OrderID     int64
	CourierID   *int64
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}

// CourierScore — неизменяемая запись о начислении баллов. Исправления
// делаются новыми компенсирующими записями, не изменением существующих.
type CourierScore struct {
	ID        int64
	WorkerID  int64
	OrderID   int64
	Points    decimal.Decimal
	Source    string
	CreatedAt time.Time
}
