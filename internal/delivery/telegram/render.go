package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/usecase"
)

const (
	divider    = "━━━━━━━━━━━━━━━━━━━━━━━━━━"
	subDivider = "┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄┄"

	// Telegram caps message text at 4096 characters
	maxMessageLen = 4050
)

var confidenceIcons = map[string]string{
	"high":   "🟢",
	"medium": "🟡",
	"low":    "🔴",
}

func esc(s string) string {
	return html.EscapeString(s)
}

func welcomeText() string {
	return "🛍️ <b>AMAZON PHOTO FINDER</b>\n" +
		divider + "\n\n" +
		"Drop a product photo and I'll identify it with AI\nand find it on Amazon for you.\n\n" +
		"✨ <b>What I can do</b>\n" +
		"▸ Recognise any product from a photo\n" +
		"▸ Search Amazon in real-time\n" +
		"▸ Filter by free-delivery eligibility\n" +
		"▸ Browse results with direct Amazon links\n\n" +
		divider + "\n" +
		"<i>📸 Just send a photo to get started</i>"
}

func helpText(threshold float64) string {
	return "📖 <b>HOW TO USE</b>\n" +
		divider + "\n\n" +
		"<b>1️⃣ Send a photo</b>\n<i>Clear, well-lit, brand text visible</i>\n\n" +
		"<b>2️⃣ AI identifies the product</b>\n<i>Brand, model, features extracted</i>\n\n" +
		"<b>3️⃣ Choose your filter</b>\n<i>Free-delivery items only, or show all</i>\n\n" +
		"<b>4️⃣ Browse results</b>\n<i>◀ ▶ to paginate, tap to open on Amazon</i>\n\n" +
		divider + "\n" +
		"✈️ <b>Free delivery</b>\n" +
		fmt.Sprintf("Items Fulfilled by Amazon (FBA) ship free\nwhen your cart reaches $%.0f USD.\n", threshold) +
		"This is a best-effort estimate based on listing data.\n\n" +
		divider + "\n" +
		"<i>Commands: /start · /help</i>"
}

func analyzingText() string {
	return "🔍 <b>Analysing your photo</b>\n" + subDivider + "\n⠋ Reading product details…"
}

func searchingText(productName, filterLabel string) string {
	return "🛒 <b>Searching Amazon</b>\n" +
		subDivider + "\n" +
		"🏷️ <i>" + esc(productName) + "</i>\n" +
		"🔎 " + esc(filterLabel) + "\n\n" +
		"⠙ Fetching results…"
}

// identificationCard shows what the vision model recognised and asks
// the user to pick a delivery filter.
func identificationCard(info *domain.ProductInfo, threshold float64) string {
	label := info.ConfidenceLabel()
	icon, ok := confidenceIcons[label]
	if !ok {
		icon = "⚪"
	}

	brand := info.Brand
	if brand == "" {
		brand = "Unknown brand"
	}

	var features strings.Builder
	for _, f := range info.KeyFeatures {
		features.WriteString("  ▸ " + esc(f) + "\n")
	}
	if features.Len() == 0 {
		features.WriteString("  ▸ <i>none detected</i>\n")
	}

	return "✨ <b>PRODUCT IDENTIFIED</b>\n" +
		divider + "\n\n" +
		"🏷️ <b>" + esc(info.Name) + "</b>\n" +
		"🏢 " + esc(brand) + "\n" +
		"📦 " + esc(info.Category) + "\n\n" +
		fmt.Sprintf("%s <b>Confidence:</b> %s (%.0f%%)\n\n", icon, label, info.Confidence*100) +
		"✦ <b>Key Features</b>\n" + features.String() + "\n" +
		subDivider + "\n" +
		"🔎 <code>" + esc(info.SearchQuery) + "</code>\n" +
		divider + "\n\n" +
		"✈️ <b>Limit to free-delivery items?</b>\n" +
		fmt.Sprintf("<i>FBA items ship free when cart ≥ $%.0f</i>", threshold)
}

func starBar(rating float64) string {
	stars := [6]string{"☆☆☆☆☆", "★☆☆☆☆", "★★☆☆☆", "★★★☆☆", "★★★★☆", "★★★★★"}
	r := int(rating + 0.5)
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	return stars[r]
}

func formatReviews(count int) string {
	switch {
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

// productCard formats one listing for the results page
func productCard(l domain.Listing, index int) string {
	title := truncate(l.Title, 100)

	price := "💰 <i>Price not listed</i>"
	if l.PriceUSD > 0 {
		price = fmt.Sprintf("💰 <b>$%.2f</b>", l.PriceUSD)
	}

	var rating string
	switch {
	case l.Rating > 0 && l.ReviewCount > 0:
		rating = fmt.Sprintf("⭐ <code>%.1f</code> %s  <i>%s reviews</i>",
			l.Rating, starBar(l.Rating), formatReviews(l.ReviewCount))
	case l.Rating > 0:
		rating = fmt.Sprintf("⭐ <code>%.1f</code> %s", l.Rating, starBar(l.Rating))
	default:
		rating = "⭐ <i>No ratings yet</i>"
	}

	return fmt.Sprintf("<b>%d.</b>  %s\n%s   %s\n%s",
		index, esc(title), price, rating, esc(l.DeliveryBadge()))
}

// resultsPage builds the full results message: header, one card per
// visible listing on the current page, and a footer with counts.
func resultsPage(sess usecase.Session) string {
	filterBadge := "🌐 All items"
	if sess.FilterEnabled {
		filterBadge = "✈️ Free delivery"
	}

	productName := "Results"
	if sess.Product != nil {
		productName = sess.Product.Name
	}

	header := "🛍️ <b>" + esc(productName) + "</b>\n" +
		divider + "\n" +
		fmt.Sprintf("%s   📄 %d/%d\n", filterBadge, sess.Page+1, sess.TotalPages()) +
		subDivider + "\n"

	cards := make([]string, 0, len(sess.PageItems()))
	for i, item := range sess.PageItems() {
		cards = append(cards, productCard(item, sess.PageOffset()+i+1))
	}

	eligible := 0
	for _, l := range sess.AllListings {
		if l.QualifiesForFreeDelivery() {
			eligible++
		}
	}

	footerParts := []string{fmt.Sprintf("🔍 %d results", len(sess.Visible))}
	if !sess.FilterEnabled && eligible < len(sess.AllListings) && len(sess.AllListings) > 0 {
		footerParts = append(footerParts, fmt.Sprintf("✈️ %d with free delivery", eligible))
	}
	footer := "\n" + subDivider + "\n<i>" + strings.Join(footerParts, "   ·   ") + "</i>"

	// Overflow drops whole trailing cards rather than cutting the string,
	// which could split an HTML tag or a multibyte character. Byte length
	// over-counts Telegram's UTF-16 limit, so staying under it is safe.
	assemble := func() string {
		return header + "\n\n" + strings.Join(cards, "\n\n"+subDivider+"\n\n") + footer
	}
	full := assemble()
	for len(full) > maxMessageLen && len(cards) > 1 {
		cards = cards[:len(cards)-1]
		full = assemble()
	}
	return full
}

// truncate cuts s to at most n runes without splitting a character
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sessionExpiredText() string {
	return "⚠️ Session expired — please send a new photo."
}

func analysisFailedText() string {
	return "❌ I couldn't identify a product in that photo.\nTry a clearer shot with the brand or label visible."
}

func searchFailedText() string {
	return "❌ Search failed. Please try again."
}

func noResultsText() string {
	return "🔍 No matching items found on Amazon.\nTry another photo or a different angle."
}

func rateLimitedText() string {
	return "⏳ Too many searches right now. Please wait a moment and try again."
}

func notAPhotoText() string {
	return "📸 Send me a <b>photo</b> of a product and I'll find it on Amazon.\nUse /help for tips."
}
