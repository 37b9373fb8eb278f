//go:build linux || freebsd || openbsd || netbsd || dragonfly

package display

import (
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

func platformMonitors() ([]Monitor, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	mons, err := randrMonitors(conn, screen.Root)
	if err != nil {
		log.Printf("randr unavailable, using root window: %v", err)
		return []Monitor{{
			Name:    "screen",
			Rect:    image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)),
			Primary: true,
		}}, nil
	}
	return mons, nil
}

func randrMonitors(conn *xgb.Conn, root xproto.Window) ([]Monitor, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primary := randr.Output(0)
	if p, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = p.Output
	}
	var mons []Monitor
	for _, out := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, out, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		mons = append(mons, Monitor{
			Index:   len(mons),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary: out == primary,
		})
	}
	return mons, nil
}
