package tickets

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vkotlyarr/VF-BookingEngine/internal/domain"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
)

const qrImageSize = 256

// Service публичный просмотр билетов: по ссылке без авторизации отдаются
// состав группы, QR-код для сканера и печатная PDF-версия
type Service struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	logger      Logger
}

// NewService создает сервис билетов
func NewService(bookingRepository BookingRepository, slotRepository SlotRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepository,
		slotRepo:    slotRepository,
		logger:      logger,
	}
}

// Get возвращает представление билета по внешней ссылке
func (s *Service) Get(ctx context.Context, ref string) (*TicketView, error) {
	code, group, err := s.loadGroup(ctx, ref)
	if err != nil {
		return nil, err
	}

	head := group[0]
	view := &TicketView{
		TicketCode:   code,
		CustomerName: head.CustomerName,
		Scanned:      head.Scanned,
		ScannedAt:    head.ScannedAt,
		Entries:      make([]TicketEntry, 0, len(group)),
	}
	if head.BookingGroupID != nil {
		view.BookingGroupID = *head.BookingGroupID
	}

	cancelled := true
	for _, b := range group {
		slot, err := s.slotRepo.GetByID(ctx, b.SlotID)
		if err != nil {
			s.logger.Error("Get: failed to get slot id=%d for booking id=%d: %v", b.SlotID, b.ID, err)
			return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		view.VisitorTotal += b.VisitorCount
		view.AmountTotal += b.TotalPrice
		if !b.IsCancelled() {
			cancelled = false
		}
		view.Entries = append(view.Entries, TicketEntry{
			BookingID: b.ID,
			SlotDate:  slot.SlotDate,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Visitors:  b.VisitorCount,
			Status:    b.Status,
		})
	}
	view.Cancelled = cancelled

	return view, nil
}

// QRCode возвращает PNG с QR-кодом билета для предъявления сканеру
func (s *Service) QRCode(ctx context.Context, ref string) ([]byte, error) {
	code, _, err := s.loadGroup(ctx, ref)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
	if err != nil {
		s.logger.Error("QRCode: failed to encode QR for ticket %s: %v", code, err)
		return nil, fmt.Errorf("%w: failed to encode QR: %v", ErrInternal, err)
	}
	return png, nil
}

// PDF возвращает печатную версию билета с QR-кодом
func (s *Service) PDF(ctx context.Context, ref string) ([]byte, error) {
	view, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(view.TicketCode, qrcode.Medium, qrImageSize)
	if err != nil {
		s.logger.Error("PDF: failed to encode QR for ticket %s: %v", view.TicketCode, err)
		return nil, fmt.Errorf("%w: failed to encode QR: %v", ErrInternal, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Visit Ticket")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Ticket: %s", view.TicketCode))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", view.CustomerName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Visitors: %d", view.VisitorTotal))
	pdf.Ln(8)

	for _, e := range view.Entries {
		pdf.Cell(0, 10, fmt.Sprintf("%s  %s - %s  (%d)",
			e.SlotDate.Format(domain.DateFormat), e.StartTime, e.EndTime, e.Visitors))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("PDF: failed to render PDF for ticket %s: %v", view.TicketCode, err)
		return nil, fmt.Errorf("%w: failed to render PDF: %v", ErrInternal, err)
	}
	return buf.Bytes(), nil
}

// loadGroup валидирует ссылку и грузит все бронирования билета
func (s *Service) loadGroup(ctx context.Context, ref string) (string, []*domain.Booking, error) {
	code, ok := domain.NormalizeTicketRef(ref)
	if !ok {
		s.logger.Warn("loadGroup: malformed ticket ref %q", ref)
		return "", nil, ErrMalformedRef
	}

	head, err := s.bookingRepo.GetByTicketCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return "", nil, ErrTicketNotFound
		}
		s.logger.Error("loadGroup: failed to get booking by ticket %s: %v", code, err)
		return "", nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	group := []*domain.Booking{head}
	if head.BookingGroupID != nil {
		group, err = s.bookingRepo.GetByGroupID(ctx, *head.BookingGroupID)
		if err != nil {
			s.logger.Error("loadGroup: failed to get group %s: %v", *head.BookingGroupID, err)
			return "", nil, fmt.Errorf("%w: failed to get booking group: %v", ErrInternal, err)
		}
		// Перенесённые строки группы носят собственный билет
		filtered := group[:0]
		for _, b := range group {
			if b.TicketCode == code {
				filtered = append(filtered, b)
			}
		}
		group = filtered
	}
	if len(group) == 0 {
		return "", nil, ErrTicketNotFound
	}

	return code, group, nil
}
