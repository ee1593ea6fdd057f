/*
Package rules holds the rule sets the transformer applies to site pages.

Each set is an ordered list of rewrite.Rule values built from the configuration:

	consent-add      global consent stylesheet and script
	consent-remove   legacy inline consent banners, CSS, JS and listeners
	consent-purge    consent-remove plus the global consent assets
	analytics        gtag placeholder, duplicates and legacy tracking
	nav              legacy navigation CSS and the mobile navigation script
	nav-header       global site header, its stylesheet, disclosure at the bottom
	seo              head meta, canonical, social cards, images, JSON-LD
	links            breadcrumbs, category and app mentions, related reviews
	links-advanced   workflow, store size, integration and hub links (after links)
	favicon          icon links
	email-capture    email capture script
	replace          literal replacements from the configuration

nav-header and links-advanced are not in the default pipeline.

Every rule either declares its end state through Done or leaves already
transformed text alone, so running any set twice changes nothing the second
time.

🔍 Example:

	reg := rules.NewRegistry(cfg)
	list, err := reg.Resolve("consent-remove", "seo")
	if err != nil {
		return err
	}
	res, err := rewrite.Chain(doc, rewrite.NewPage("klaviyo-review.html", cfg.Site.BaseURL), list)
*/
package rules
