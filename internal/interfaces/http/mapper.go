package http

import (
	"github.com/jhoicas/koli-api/internal/application/dto"
	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
)

func toNotice(n domain.Notice) *dto.NoticeDTO {
	if n.Message == "" && n.Severity == "" {
		return nil
	}
	return &dto.NoticeDTO{Message: n.Message, Severity: n.Severity}
}

func toLines(lines []entity.LineItem) []dto.LineItemDTO {
	out := make([]dto.LineItemDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.LineItemDTO{
			SKU:          l.SKU,
			Quantity:     l.Quantity,
			ItemID:       l.ItemID,
			RecordID:     l.RecordID,
			CreatedBy:    l.CreatedBy,
			CreationDate: l.CreationDate,
			Barcode:      l.Barcode,
		})
	}
	return out
}

func toSessionResponse(v appkoli.SessionView, n domain.Notice) dto.SessionResponse {
	return dto.SessionResponse{
		ID:           v.ID,
		Workflow:     v.Workflow,
		ContainerID:  v.ContainerID,
		State:        v.State,
		Lines:        toLines(v.Lines),
		Total:        v.Total,
		JustAdded:    v.JustAdded,
		BaselineSize: v.BaselineSize,
		Notice:       toNotice(n),
	}
}

func toDeletionResponse(v appkoli.DeletionView, n domain.Notice) dto.DeletionResponse {
	return dto.DeletionResponse{
		ContainerID: v.ContainerID,
		Lines:       toLines(v.Lines),
		Total:       v.Total,
		Notice:      toNotice(n),
	}
}

func toReportResponse(v appkoli.ReportView, n domain.Notice) dto.ReportResponse {
	entries := make([]dto.ReportEntryDTO, 0, len(v.Entries))
	for _, e := range v.Entries {
		entries = append(entries, dto.ReportEntryDTO{
			ID:           e.RecordID,
			ContainerID:  e.ContainerID,
			Quantity:     e.Quantity,
			Model:        e.SKU,
			Barcode:      e.Barcode,
			CreationDate: e.CreationDate,
		})
	}
	return dto.ReportResponse{
		LedgerSize: v.LedgerSize,
		FetchedAt:  v.FetchedAt,
		Start:      v.Start,
		End:        v.End,
		Count:      len(entries),
		Entries:    entries,
		Notice:     toNotice(n),
	}
}
