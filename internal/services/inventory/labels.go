package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/services/printer"
)

// LabelsInput is the body of POST /inventory/labels
type LabelsInput struct {
	IMEIs []string            `json:"imeis" validate:"required,min=1,dive,required"`
	Sheet printer.SheetConfig `json:"sheet"`
}

// Labels renders a QR label sheet for the given IMEIs. Every IMEI must be in inventory.
func (s *Service) Labels(ctx context.Context, in LabelsInput) ([]byte, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Where("imei IN ?", in.IMEIs).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	byIMEI := make(map[string]*models.InventoryItem, len(items))
	for i := range items {
		byIMEI[items[i].IMEI] = &items[i]
	}

	labels := make([]printer.Label, 0, len(in.IMEIs))
	for _, imei := range in.IMEIs {
		item, ok := byIMEI[imei]
		if !ok {
			return nil, apperr.NotFound("IMEI %s not found in inventory", imei)
		}
		labels = append(labels, labelOf(item))
	}
	return printer.GenerateLabelsPDF(in.Sheet, labels)
}

func labelOf(item *models.InventoryItem) printer.Label {
	var sub []string
	for _, p := range []*string{item.Colour, item.Storage, item.PONumber} {
		if p != nil && *p != "" {
			sub = append(sub, *p)
		}
	}
	title := item.DeviceModelText()
	if item.Brand != nil && item.Model != nil {
		title = *item.Brand + " " + *item.Model
	}
	return printer.Label{
		IMEI:     item.IMEI,
		Title:    title,
		Subtitle: strings.Join(sub, " / "),
	}
}
