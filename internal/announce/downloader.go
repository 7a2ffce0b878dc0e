package announce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/statscrape/internal/fetch"
)

// ErrNoAnnouncement means the search finished but no matching attachment
// could be downloaded.
var ErrNoAnnouncement = errors.New("no matching announcement found")

// DateLayout is how the search form expects dates.
const DateLayout = "02/01/2006"

// Query describes one announcement search.
type Query struct {
	CompanyURL       string
	Segment          string
	AnnouncementType string
	From, To         time.Time
	Category         string
	// SubCategoryWords must all appear in the chosen sub-category option.
	SubCategoryWords []string
	// Keywords select result rows; any one is enough.
	Keywords []string
	// FilePrefix names downloads <prefix>_<unix seconds>.pdf.
	FilePrefix string
}

// DefaultQuery searches Ashok Leyland's monthly business update for May 2025.
func DefaultQuery() Query {
	return Query{
		CompanyURL:       "https://www.bseindia.com/stock-share-price/ashok-leyland-ltd/ashokley/500477/corp-announcements/",
		Segment:          "Equity",
		AnnouncementType: "Announcement",
		From:             time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:               time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC),
		Category:         "Company Update",
		SubCategoryWords: []string{"monthly", "business"},
		Keywords:         []string{"may", "2025", "sales", "monthly", "business"},
		FilePrefix:       "ashok_leyland",
	}
}

// Form holds the element ids of the search form.
type Form struct {
	Segment          string
	AnnouncementType string
	From, To         string
	Category         string
	SubCategory      string
	Submit           string
}

// DefaultForm is the BSE corporate announcements form.
func DefaultForm() Form {
	return Form{
		Segment:          "ddlAnnType",
		AnnouncementType: "ddlAnnsubmType",
		From:             "txtFromDt",
		To:               "txtToDt",
		Category:         "ddlPeriod",
		SubCategory:      "ddlsubcat",
		Submit:           "btnSubmit",
	}
}

// Downloader fills the announcement search form in a browser and downloads
// the first matching PDF over plain HTTP.
type Downloader struct {
	Browser Browser
	Client  *fetch.Client
	Form    Form
	Dir     string
	// MinBytes rejects downloads at or below this size.
	MinBytes int64
	Referer  string

	FormTimeout    time.Duration
	ResultsTimeout time.Duration
	PollInterval   time.Duration
	// Settle is the pause after each form change while the page refreshes
	// dependent dropdowns.
	Settle time.Duration

	// Now stamps download file names.
	Now func() time.Time
}

func (d *Downloader) defaults() {
	if d.Form == (Form{}) {
		d.Form = DefaultForm()
	}
	if d.Client == nil {
		d.Client = &fetch.Client{MaxAttempts: 1, PerRequestTimeout: 60 * time.Second}
	}
	if d.Referer == "" {
		d.Referer = "https://www.bseindia.com/"
	}
	if d.FormTimeout <= 0 {
		d.FormTimeout = 20 * time.Second
	}
	if d.ResultsTimeout <= 0 {
		d.ResultsTimeout = 30 * time.Second
	}
	if d.PollInterval <= 0 {
		d.PollInterval = time.Second
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Run performs the search and returns the path of the downloaded PDF.
func (d *Downloader) Run(ctx context.Context, q Query) (string, error) {
	d.defaults()
	if d.Browser == nil {
		return "", errors.New("no browser configured")
	}
	page, err := d.Browser.Open(ctx, q.CompanyURL)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.WaitFor(byID(d.Form.Segment), d.FormTimeout); err != nil {
		return "", fmt.Errorf("search form did not load: %w", err)
	}

	d.choose(page, d.Form.Segment, q.Segment)
	if err := d.settle(ctx, 1); err != nil {
		return "", err
	}
	d.choose(page, d.Form.AnnouncementType, q.AnnouncementType)
	if err := d.settle(ctx, 1); err != nil {
		return "", err
	}
	d.setDate(page, d.Form.From, q.From.Format(DateLayout))
	d.setDate(page, d.Form.To, q.To.Format(DateLayout))
	if err := d.settle(ctx, 1); err != nil {
		return "", err
	}
	d.choose(page, d.Form.Category, q.Category)
	if err := d.settle(ctx, 2); err != nil {
		return "", err
	}
	d.chooseSubCategory(page, q.SubCategoryWords)
	if err := d.settle(ctx, 1); err != nil {
		return "", err
	}

	if _, err := page.Eval(`id => document.getElementById(id).click()`, d.Form.Submit); err != nil {
		if cerr := page.Click(byID(d.Form.Submit)); cerr != nil {
			return "", fmt.Errorf("submit search: %w", errors.Join(err, cerr))
		}
	}
	if !d.waitForResults(ctx, page) {
		log.Warn().Dur("timeout", d.ResultsTimeout).Msg("results did not appear; scanning page anyway")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read results page: %w", err)
	}
	links, err := FindPDFLinks(html, page.URL(), q.Keywords)
	if err != nil {
		return "", err
	}
	log.Info().Int("candidates", len(links)).Msg("matching PDF links")

	return d.downloadFirst(ctx, links, q.FilePrefix)
}

func (d *Downloader) downloadFirst(ctx context.Context, links []Link, prefix string) (string, error) {
	if prefix == "" {
		prefix = "announcement"
	}
	client := *d.Client
	client.Header = http.Header{}
	for k, v := range d.Client.Header {
		client.Header[k] = v
	}
	client.Header.Set("Accept", "application/pdf,*/*")
	client.Header.Set("Referer", d.Referer)

	for _, l := range links {
		name := fmt.Sprintf("%s_%d.pdf", prefix, d.Now().Unix())
		path, err := client.Download(ctx, l.URL, d.Dir, name, d.MinBytes)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Warn().Err(err).Str("url", l.URL).Msg("download failed; trying next link")
			continue
		}
		log.Info().Str("path", path).Str("row", l.RowText).Msg("downloaded announcement")
		return path, nil
	}
	return "", ErrNoAnnouncement
}

// choose selects target in a dropdown. A missing option is logged and the
// search continues with whatever the form defaults to.
func (d *Downloader) choose(page Page, id, target string) {
	if target == "" {
		return
	}
	opts, err := page.Options(byID(id))
	if err != nil {
		log.Warn().Err(err).Str("field", id).Msg("dropdown options unavailable")
		return
	}
	choice, ok := ChooseOption(opts, target)
	if !ok {
		log.Warn().Str("field", id).Str("want", target).Msg("dropdown option not found")
		return
	}
	if err := page.SelectOption(byID(id), choice); err != nil {
		log.Warn().Err(err).Str("field", id).Str("option", choice).Msg("dropdown selection failed")
		return
	}
	log.Debug().Str("field", id).Str("option", choice).Msg("selected")
}

func (d *Downloader) chooseSubCategory(page Page, words []string) {
	if len(words) == 0 {
		return
	}
	opts, err := page.Options(byID(d.Form.SubCategory))
	if err != nil {
		log.Warn().Err(err).Msg("sub-category options unavailable")
		return
	}
	choice, ok := ChooseAllWords(opts, words)
	if !ok {
		log.Warn().Strs("words", words).Msg("no sub-category matches")
		return
	}
	d.choose(page, d.Form.SubCategory, choice)
}

const setValueScript = `([id, value]) => {
	const f = document.getElementById(id);
	if (!f) return null;
	f.value = value;
	f.dispatchEvent(new Event('change'));
	return f.value;
}`

// setDate writes the value through script and reads it back. Date pickers
// that reformat or reject scripted values get the value typed instead.
func (d *Downloader) setDate(page Page, id, value string) {
	got, err := page.Eval(setValueScript, []any{id, value})
	if err == nil {
		if s, ok := got.(string); ok && s == value {
			return
		}
	}
	sel := byID(id)
	if err := page.Fill(sel, value); err != nil {
		log.Warn().Err(err).Str("field", id).Msg("could not set date")
		return
	}
	if err := page.Press(sel, "Tab"); err != nil {
		log.Warn().Err(err).Str("field", id).Msg("could not leave date field")
	}
}

// waitForResults polls until result rows or the empty-result notice appear.
func (d *Downloader) waitForResults(ctx context.Context, page Page) bool {
	deadline := time.Now().Add(d.ResultsTimeout)
	for {
		if n, err := page.Count("table tr:has(td)"); err == nil && n > 0 {
			return true
		}
		if html, err := page.Content(); err == nil && strings.Contains(strings.ToLower(html), "no record found") {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *Downloader) settle(ctx context.Context, n int) error {
	if d.Settle <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(n) * d.Settle):
		return nil
	}
}

func byID(id string) string { return "#" + id }
