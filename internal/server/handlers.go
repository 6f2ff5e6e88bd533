package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/options"
	"github.com/username/attendance-tracker/internal/stats"
	"github.com/username/attendance-tracker/internal/transfer"
)

type monthParams struct {
	Year  int `params:"year" validate:"gte=1900,lte=2100"`
	Month int `params:"month" validate:"gte=1,lte=12"`
}

type dayParams struct {
	Year  int `params:"year" validate:"gte=1900,lte=2100"`
	Month int `params:"month" validate:"gte=1,lte=12"`
	Day   int `params:"day" validate:"gte=1,lte=31"`
}

func (p dayParams) month() monthParams {
	return monthParams{Year: p.Year, Month: p.Month}
}

type goalRequest struct {
	Goal *int `json:"goal" validate:"required,gte=0,lte=100"`
}

type optionsRequest struct {
	Theme          *string `json:"theme,omitempty" validate:"omitempty,min=1"`
	Background     *string `json:"background,omitempty" validate:"omitempty,hexcolor"`
	Foreground     *string `json:"foreground,omitempty" validate:"omitempty,hexcolor"`
	Accent         *string `json:"accent,omitempty" validate:"omitempty,hexcolor"`
	AttendanceGoal *int    `json:"attendanceGoal,omitempty" validate:"omitempty,gte=0,lte=100"`
	Reset          bool    `json:"reset,omitempty"`
}

type dayView struct {
	Day     int    `json:"day"`
	Weekday string `json:"weekday"`
	Type    string `json:"type"`
	Note    string `json:"note,omitempty"`
	Marked  bool   `json:"marked"`
}

type monthView struct {
	Key      string              `json:"key"`
	Progress attendance.Progress `json:"progress"`
	Message  string              `json:"message"`
	Entries  []ledger.Entry      `json:"entries"`
	Days     []dayView           `json:"days"`
}

func (s *Server) check(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fiber.NewError(fiber.StatusBadRequest, strings.Join(fields, "; "))
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (s *Server) parseMonth(c *fiber.Ctx) (monthParams, error) {
	var p monthParams
	if err := c.ParamsParser(&p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "year and month must be integers")
	}
	return p, s.check(p)
}

func (s *Server) parseDay(c *fiber.Ctx) (dayParams, error) {
	var p dayParams
	if err := c.ParamsParser(&p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "year, month and day must be integers")
	}
	return p, s.check(p)
}

// manager builds a tracker for the month with the saved goal applied
func (s *Server) manager(p monthParams) *attendance.Manager {
	m := attendance.NewManager(p.Year, calendar.StorageMonth(p.Month).Calendar(), s.ledger, s.calendar, s.logger)
	if err := m.SetGoalPercent(s.options.Options().AttendanceGoal); err != nil {
		s.logger.Warn("Saved goal rejected, using default")
	}
	return m
}

func (s *Server) renderMonth(c *fiber.Ctx, m *attendance.Manager) error {
	info := s.calendar.GetMonthInfo(m.Year(), m.Month())
	days := make([]dayView, 0, len(info.Days))
	for _, d := range info.Days {
		days = append(days, dayView{
			Day:     d.Date.Day(),
			Weekday: d.Date.Weekday().String(),
			Type:    d.Type.String(),
			Note:    d.Note,
			Marked:  m.HasMark(d.Date.Day()),
		})
	}

	progress := m.Progress()
	return c.JSON(monthView{
		Key:      m.Key(),
		Progress: progress,
		Message:  progress.Message(),
		Entries:  m.Entries(),
		Days:     days,
	})
}

func dateError(err error) error {
	if errors.Is(err, attendance.ErrInvalidDate) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func (s *Server) getMonth(c *fiber.Ctx) error {
	p, err := s.parseMonth(c)
	if err != nil {
		return err
	}
	return s.renderMonth(c, s.manager(p))
}

func (s *Server) clearMonth(c *fiber.Ctx) error {
	p, err := s.parseMonth(c)
	if err != nil {
		return err
	}
	m := s.manager(p)
	m.Clear()
	return s.renderMonth(c, m)
}

func (s *Server) markDay(c *fiber.Ctx) error {
	p, err := s.parseDay(c)
	if err != nil {
		return err
	}
	m := s.manager(p.month())
	if err := m.Mark(p.Day); err != nil {
		return dateError(err)
	}
	return s.renderMonth(c, m)
}

func (s *Server) unmarkDay(c *fiber.Ctx) error {
	p, err := s.parseDay(c)
	if err != nil {
		return err
	}
	m := s.manager(p.month())
	m.Unmark(p.Day)
	return s.renderMonth(c, m)
}

func (s *Server) toggleDay(c *fiber.Ctx) error {
	p, err := s.parseDay(c)
	if err != nil {
		return err
	}
	m := s.manager(p.month())
	if err := m.Toggle(p.Day); err != nil {
		return dateError(err)
	}
	return s.renderMonth(c, m)
}

func (s *Server) putGoal(c *fiber.Ctx) error {
	var req goalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.check(req); err != nil {
		return err
	}

	if err := s.options.SetGoal(*req.Goal); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(s.options.Options())
}

func (s *Server) getHolidays(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil || year < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "year must be a positive integer")
	}

	type holidayView struct {
		Date string `json:"date"`
		Name string `json:"name"`
	}

	holidays := s.calendar.Holidays(year)
	out := make([]holidayView, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, holidayView{Date: h.Date.Format("2006-01-02"), Name: h.Name})
	}

	return c.JSON(fiber.Map{"year": year, "holidays": out})
}

func (s *Server) exportCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="attendance_history.csv"`)
	return c.SendString(transfer.ExportCSV(s.ledger))
}

func (s *Server) importCSV(c *fiber.Ctx) error {
	result, err := transfer.ImportCSV(s.ledger, string(c.Body()))
	if errors.Is(err, transfer.ErrEmptyImport) || errors.Is(err, transfer.ErrInvalidHeader) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"errors":     result.Errors,
		"message":    result.Message(),
	})
}

func (s *Server) weekdayStats(c *fiber.Ctx) error {
	totals := stats.ByWeekday(s.ledger)

	out := make(map[string]int, len(totals))
	for wd, count := range totals {
		out[wd.String()] = count
	}
	return c.JSON(out)
}

func (s *Server) monthlyStats(c *fiber.Ctx) error {
	return c.JSON(stats.Monthly(s.ledger, s.calendar, s.options.Options().AttendanceGoal))
}

func (s *Server) getOptions(c *fiber.Ctx) error {
	return c.JSON(s.options.Options())
}

func (s *Server) putOptions(c *fiber.Ctx) error {
	var req optionsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.check(req); err != nil {
		return err
	}

	if req.Reset {
		s.options.Reset()
	}

	if req.Theme != nil {
		if err := s.options.ApplyTheme(*req.Theme); err != nil {
			if errors.Is(err, options.ErrUnknownTheme) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	err := s.options.Update(func(o *options.Options) {
		if req.Background != nil {
			o.Background = *req.Background
		}
		if req.Foreground != nil {
			o.Foreground = *req.Foreground
		}
		if req.Accent != nil {
			o.Accent = *req.Accent
		}
		if req.AttendanceGoal != nil {
			o.AttendanceGoal = *req.AttendanceGoal
		}
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(s.options.Options())
}
