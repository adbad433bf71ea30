package models

// TourPackage содержит поля турпакета, нужные для бронирования.
// Сам каталог принадлежит внешнему сервису, здесь только чтение.
type TourPackage struct {
	ID                     int64
	OperatorID             string
	Title                  string
	PricePerPersonCents    int64
	AllowsLateCancellation bool
	CancellationWindowDays int
	Active                 bool
}

// CancellationPolicy описывает правила отмены брони для турпакета.
type CancellationPolicy struct {
	Allowed    bool // Разрешена ли отмена внутри окна
	WindowDays int  // За сколько дней до начала начинается окно
}
