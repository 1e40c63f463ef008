package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "02.01.2006"

// Exporter writes admin exports as xlsx files into the configured
// directory.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func New(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// WriteBookings creates an xlsx with one row per booking and returns the
// file path. Duration and total cost come straight from the backend.
func (e *Exporter) WriteBookings(bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Room", "Guest", "Email", "Check-in", "Check-out",
		"Nights", "Total", "Status", "Rejection reason", "Guests", "Special requests", "Created",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), b.Room.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), b.User.Username)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.User.Email)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.CheckInDate.Format(dateLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.CheckOutDate.Format(dateLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), b.DurationInDays)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), b.TotalCost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), b.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), b.RejectionReason)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), b.Guests)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), b.SpecialRequests)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("M%d", row), b.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "B", "D", 22)
	_ = f.SetColWidth(sheetName, "E", "I", 12)
	_ = f.SetColWidth(sheetName, "J", "M", 24)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Bookings Excel file created")
	return filePath, nil
}

// WriteRooms creates an xlsx with the room catalog.
func (e *Exporter) WriteRooms(rooms []models.Room) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Rooms"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Name", "Type", "Bed", "Floor", "Capacity", "Price", "Available"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rooms {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.RoomType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.BedType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.FloorLevel)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Capacity)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Price)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), boolToYesNo(r.Available))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "B", "B", 24)
	_ = f.SetColWidth(sheetName, "C", "H", 12)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("rooms_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Rooms Excel file created")
	return filePath, nil
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
