// Package nameparser expands %-placeholders in watermark text and file name
// patterns.
//
//	%y    year (2006)        %yy   two-digit year
//	%mo   month (01)         %mon  month name (January)   %mon2 short month (Jan)
//	%d    day (02)           %w    weekday (Monday)        %w2   short weekday (Mon)
//	%h    hour, 24h (15)     %mi   minute                  %s    second
//	%ms   millisecond        %pm   AM/PM
//	%width, %height          image size in pixels
//	%rn   random digit       %ra   random alphanumeric character
//	%un   user name          %cn   computer name           %n    new line
package nameparser

import (
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Parser resolves placeholders. The zero value uses the wall clock and the
// current user and host.
type Parser struct {
	Now      func() time.Time
	UserName string
	HostName string
	// NewLine replaces %n; defaults to "\n". File name patterns set it to "".
	NewLine *string
}

// New returns a Parser for watermark text.
func New() *Parser { return &Parser{} }

// ForFileNames returns a Parser whose output is safe to use as a file name.
func ForFileNames() *Parser {
	empty := ""
	return &Parser{NewLine: &empty}
}

// Resolve expands every placeholder in template. img may be nil, in which case
// size placeholders resolve to 0.
func (p *Parser) Resolve(template string, img image.Image) string {
	if !strings.Contains(template, "%") {
		return template
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	var size image.Point
	if img != nil {
		size = img.Bounds().Size()
	}
	newLine := "\n"
	if p.NewLine != nil {
		newLine = *p.NewLine
	}

	// Longer tokens come first: strings.Replacer tries candidates in argument order.
	r := strings.NewReplacer(
		"%width", strconv.Itoa(size.X),
		"%height", strconv.Itoa(size.Y),
		"%mon2", now.Format("Jan"),
		"%mon", now.Format("January"),
		"%mo", now.Format("01"),
		"%mi", now.Format("04"),
		"%ms", fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond)),
		"%yy", now.Format("06"),
		"%y", now.Format("2006"),
		"%d", now.Format("02"),
		"%h", now.Format("15"),
		"%s", now.Format("05"),
		"%pm", now.Format("PM"),
		"%w2", now.Format("Mon"),
		"%w", now.Format("Monday"),
		"%rn", strconv.Itoa(rand.IntN(10)),
		"%ra", string(alphanumeric[rand.IntN(len(alphanumeric))]),
		"%un", p.userName(),
		"%cn", p.hostName(),
		"%n", newLine,
	)
	return r.Replace(template)
}

func (p *Parser) userName() string {
	if p.UserName != "" {
		return p.UserName
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func (p *Parser) hostName() string {
	if p.HostName != "" {
		return p.HostName
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return ""
}
