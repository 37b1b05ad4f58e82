package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/gstflow/gstflow/internal/locator"
)

// rodSession wraps the Rod browser and a single page for the run lifetime.
type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
}

// Launch starts a Chromium instance, opens one page, and binds the download
// directory with prompts suppressed. It is the production LaunchFunc.
func Launch(opts Options) (Session, error) {
	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}

	if opts.DownloadDir != "" {
		dir, err := filepath.Abs(opts.DownloadDir)
		if err == nil {
			err = os.MkdirAll(dir, 0o755)
		}
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("prepare download dir: %w", err)
		}
		err = proto.BrowserSetDownloadBehavior{
			Behavior:         proto.BrowserSetDownloadBehaviorBehaviorAllow,
			BrowserContextID: b.BrowserContextID,
			DownloadPath:     dir,
		}.Call(b)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("bind download dir: %w", err)
		}
	}

	return &rodSession{browser: b, page: page}, nil
}

func (s *rodSession) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return s.page.WaitLoad()
}

// Find performs one immediate DOM lookup. The NotFoundSleeper makes Rod
// return instead of retrying internally; polling cadence belongs to the
// resolver, not the session.
func (s *rodSession) Find(c locator.Candidate) (Element, error) {
	p := s.page.Sleeper(rod.NotFoundSleeper)

	var el *rod.Element
	var err error
	switch c.Kind {
	case locator.XPath:
		el, err = p.ElementX(c.Expr)
	case locator.LinkText:
		el, err = p.ElementX(fmt.Sprintf("//a[normalize-space()=%q]", c.Expr))
	default:
		el, err = p.Element(c.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, c.Kind, c.Expr)
	}
	return &rodElement{el: el}, nil
}

func (s *rodSession) URL() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (s *rodSession) Eval(js string) error {
	_, err := s.page.Eval(js)
	return err
}

func (s *rodSession) Screenshot(path string) error {
	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *rodSession) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Input(value string) error {
	// Select-all then type, so existing text is replaced not appended.
	if err := e.el.SelectAllText(); err != nil {
		return err
	}
	return e.el.Input(value)
}

func (e *rodElement) Hover() error {
	return e.el.Hover()
}

func (e *rodElement) SelectIndex(i int) error {
	_, err := e.el.Eval(`(i) => {
		this.selectedIndex = i;
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, i)
	return err
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Interactable() error {
	_, err := e.el.Interactable()
	return err
}
