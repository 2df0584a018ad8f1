// internal/service/format.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"printer-service/internal/driver"
	"printer-service/internal/escpos"
	"printer-service/internal/model"
)

// formatStep is one session call of a format request
type formatStep func(ctx context.Context, s *driver.Session) error

type sessionToggle func(*driver.Session, context.Context, bool) error

// formatSteps validates req and turns it into session calls. Nothing is
// written for a request that fails validation. The first step checks every
// attribute against the session's dialect, so a request mixing supported and
// unsupported attributes fails before its first write.
func formatSteps(req *model.FormatRequest) ([]formatStep, error) {
	steps := []formatStep{func(_ context.Context, s *driver.Session) error {
		return checkCapabilities(req, s.Dialect())
	}}

	if req.Normal {
		steps = append(steps, func(ctx context.Context, s *driver.Session) error {
			return s.Normal(ctx)
		})
	}

	if req.Justification != nil {
		j, err := escpos.ParseJustification(*req.Justification)
		if err != nil {
			return nil, err
		}
		steps = append(steps, func(ctx context.Context, s *driver.Session) error {
			return s.SetJustification(ctx, j)
		})
	}

	toggles := []struct {
		value *bool
		set   sessionToggle
	}{
		{req.Emphasis, (*driver.Session).SetEmphasis},
		{req.Underline, (*driver.Session).SetUnderline},
		{req.Reverse, (*driver.Session).SetReverse},
		{req.UpsideDown, (*driver.Session).SetUpsideDown},
		{req.AltFont, (*driver.Session).SetAltFont},
	}
	for _, t := range toggles {
		if t.value == nil {
			continue
		}
		on, set := *t.value, t.set
		steps = append(steps, func(ctx context.Context, s *driver.Session) error {
			return set(s, ctx, on)
		})
	}

	if req.Width != nil || req.Height != nil {
		width, height := req.Width, req.Height
		steps = append(steps, func(ctx context.Context, s *driver.Session) error {
			scale := s.State().Scale
			if width != nil {
				scale.Width = *width
			}
			if height != nil {
				scale.Height = *height
			}
			return s.SetScale(ctx, scale.Width, scale.Height)
		})
	}

	return steps, nil
}

// checkCapabilities rejects every attribute of req the dialect cannot drive
func checkCapabilities(req *model.FormatRequest, dialect *escpos.Dialect) error {
	supported := make(map[model.Capability]bool)
	for _, c := range model.CapabilitiesOf(dialect) {
		supported[c] = true
	}

	requested := []struct {
		set bool
		cap model.Capability
	}{
		{req.Justification != nil, model.CapabilityJustify},
		{req.Emphasis != nil, model.CapabilityEmphasis},
		{req.Underline != nil, model.CapabilityUnderline},
		{req.Reverse != nil, model.CapabilityReverse},
		{req.UpsideDown != nil, model.CapabilityUpsideDown},
		{req.AltFont != nil, model.CapabilityAltFont},
		{req.Width != nil || req.Height != nil, model.CapabilityScale},
	}

	var missing []string
	for _, r := range requested {
		if r.set && !supported[r.cap] {
			missing = append(missing, string(r.cap))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("format %s on %s: %w", strings.Join(missing, ", "), dialect.Name, escpos.ErrUnsupportedCommand)
	}
	return nil
}

func applySteps(ctx context.Context, s *driver.Session, steps []formatStep) error {
	for _, step := range steps {
		if err := step(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// printSelfTest prints a sample of every style the dialect supports, then
// restores the defaults. Styles the firmware lacks are skipped.
func printSelfTest(ctx context.Context, s *driver.Session, info driver.ModelInfo, columns int) error {
	skip := func(err error) error {
		if errors.Is(err, escpos.ErrUnsupportedCommand) {
			return nil
		}
		return err
	}

	if err := s.Reset(ctx); err != nil {
		return err
	}

	if err := skip(s.SetJustification(ctx, escpos.JustifyCenter)); err != nil {
		return err
	}
	if err := s.Print(ctx, "SELF TEST"); err != nil {
		return err
	}
	if err := s.Print(ctx, fmt.Sprintf("%s %s (%s)", info.Brand, info.Model, s.Dialect().Name)); err != nil {
		return err
	}
	if err := skip(s.SetJustification(ctx, escpos.JustifyLeft)); err != nil {
		return err
	}

	samples := []struct {
		label string
		set   sessionToggle
	}{
		{"Emphasis", (*driver.Session).SetEmphasis},
		{"Underline", (*driver.Session).SetUnderline},
		{"Reverse", (*driver.Session).SetReverse},
		{"Upside down", (*driver.Session).SetUpsideDown},
		{"Alternate font", (*driver.Session).SetAltFont},
	}
	for _, sample := range samples {
		err := sample.set(s, ctx, true)
		if errors.Is(err, escpos.ErrUnsupportedCommand) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.Print(ctx, sample.label); err != nil {
			return err
		}
		if err := sample.set(s, ctx, false); err != nil {
			return err
		}
	}

	scales := []struct {
		label         string
		width, height int
	}{
		{"Double width", 2, 1},
		{"Double height", 1, 2},
		{"Double size", 2, 2},
	}
	for _, sc := range scales {
		err := s.SetScale(ctx, sc.width, sc.height)
		if errors.Is(err, escpos.ErrUnsupportedCommand) {
			break
		}
		if err != nil {
			return err
		}
		if err := s.Print(ctx, sc.label); err != nil {
			return err
		}
	}

	if err := s.Normal(ctx); err != nil {
		return err
	}
	if err := s.Print(ctx, ruler(columns)); err != nil {
		return err
	}
	return s.LineFeed(ctx, 4)
}

// ruler is a digit line one print line wide
func ruler(columns int) string {
	var b strings.Builder
	for i := 1; i <= columns; i++ {
		b.WriteByte(byte('0' + i%10))
	}
	return b.String()
}
