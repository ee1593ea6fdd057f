package config

// 🏭 Default returns the built-in configuration for the review site.
// Every call returns fresh values so callers may mutate the result.
func Default() *Config {
	return &Config{
		Root:    ".",
		Include: []string{"**/*.html"},
		Pipeline: []string{
			"consent-remove",
			"consent-add",
			"analytics",
			"nav",
			"seo",
			"links",
			"favicon",
			"email-capture",
			"replace",
		},
		Site: &Site{
			BaseURL: "https://shopifyappauthority.com",
			Name:    "ShopifyAppAuthority",
		},
		Analytics: &Analytics{
			MeasurementID: "G-J09TH92K0M",
			ConfigScript:  "/analytics-config.js",
		},
		Consent: &Consent{
			Stylesheet: "/assets/cookie-consent.css",
			Script:     "/assets/cookie-consent.js",
		},
		EmailCapture: &EmailCapture{
			Script: "/email-capture.js",
		},
		Favicon: &Favicon{
			URL:  "https://imagedelivery.net/mYndgAUf_CYgFA1HoO_-GQ/43e7272a-fb53-44aa-f0f2-7656a83bc700/public",
			Type: "image/png",
		},
		Links: &Links{
			Apps:       defaultApps(),
			Categories: defaultCategories(),
			Groups: []LinkGroup{
				{
					Name:  "email-marketing",
					Title: "Email Marketing Apps",
					URL:   "/best-shopify-apps-email-marketing/",
					Apps:  []string{"klaviyo", "mailchimp", "activecampaign", "moosend", "aweber", "mailerlite", "getresponse", "drip"},
				},
				{
					Name:  "crm",
					Title: "CRM & Sales Apps",
					URL:   "/best-shopify-apps-crm-sales/",
					Apps:  []string{"hubspot", "salesforce", "pipedrive", "close", "zoho-crm"},
				},
				{
					Name:  "reviews",
					Title: "Reviews & Social Proof Apps",
					URL:   "/reviews-social-proof-apps/",
					Apps:  []string{"judge-me", "yotpo", "stamped", "okendo"},
				},
			},
			Popular:      []string{"klaviyo", "hubspot", "mailchimp", "activecampaign"},
			StoreSize:    defaultStoreSize(),
			Integrations: defaultIntegrations(),
			Hubs: map[string]string{
				"email marketing apps":          "/best-shopify-apps-email-marketing/",
				"conversion optimization tools": "/best-shopify-apps-conversion-optimization/",
				"crm and sales apps":            "/best-shopify-apps-crm-sales/",
				"analytics and attribution":     "/best-shopify-apps-analytics-attribution/",
				"review and social proof":       "/reviews-social-proof-apps/",
				"customer service tools":        "/best-shopify-apps-customer-service/",
			},
			HubPages: []string{"index.html", "best-shopify-apps-2025*/**"},
			Topics: []Topic{
				{Name: "email", Keywords: []string{"email"}},
				{Name: "conversion", Keywords: []string{"conversion", "upsell", "optinmonster", "unbounce"}},
				{Name: "crm", Keywords: []string{"crm", "sales", "hubspot", "salesforce"}},
				{Name: "analytics", Keywords: []string{"analytics", "attribution", "mixpanel", "hotjar"}},
			},
			Workflows: []Workflow{
				{
					Name:    "email-capture",
					Phrases: []string{"email capture", "lead capture", "subscriber acquisition"},
					Text:    "email capture optimization",
					URL:     "/best-shopify-apps-conversion-optimization/",
					Topics:  []string{"conversion"},
				},
				{
					Name:    "analytics-tracking",
					Phrases: []string{"analytics tracking", "conversion tracking", "performance tracking"},
					Text:    "analytics tracking",
					URL:     "/best-shopify-apps-analytics-attribution/",
					Topics:  []string{"email", "conversion"},
				},
				{
					Name:    "social-proof",
					Phrases: []string{"social proof", "customer reviews", "testimonials"},
					Text:    "social proof apps",
					URL:     "/reviews-social-proof-apps/",
					Topics:  []string{"email", "conversion"},
				},
				{
					Name:    "crm-integration",
					Phrases: []string{"crm integration", "customer management", "lead scoring"},
					Text:    "CRM integration",
					URL:     "/best-shopify-apps-crm-sales/",
					Topics:  []string{"crm"},
				},
				{
					Name:    "sms-marketing",
					Phrases: []string{"sms marketing", "text messaging", "mobile marketing"},
					Text:    "SMS marketing",
					URL:     "/postscript-review/",
					Topics:  []string{"email"},
				},
			},
		},
		Nav: &Nav{
			Stylesheet: "/assets/site-nav.css",
			Items: []NavItem{
				{Title: "Best Tools", URL: "/best-shopify-apps-2025-ultimate-guide/"},
				{
					Title: "App Categories",
					URL:   "/app-categories/",
					Links: []NavLink{
						{Title: "Email Marketing", URL: "/best-shopify-apps-email-marketing/"},
						{Title: "Conversion & Sales", URL: "/best-shopify-apps-conversion-optimization/"},
						{Title: "Reviews & Social Proof", URL: "/reviews-social-proof-apps/"},
						{Title: "Customer Service", URL: "/best-shopify-apps-customer-service/"},
						{Title: "CRM & Sales Apps", URL: "/best-shopify-apps-crm-sales/"},
						{Title: "Analytics & Attribution", URL: "/best-shopify-apps-analytics-attribution/"},
						{Title: "Free Apps", URL: "/free-shopify-apps/"},
					},
				},
				{
					Title: "Quick FAQs",
					URL:   "/faqs/",
					Links: []NavLink{
						{Title: "Email Marketing FAQ", URL: "/faqs/email-marketing-faq/"},
						{Title: "Analytics & Attribution FAQ", URL: "/faqs/analytics-attribution-faq/"},
						{Title: "CRM & Sales FAQ", URL: "/faqs/crm-sales-faq/"},
					},
				},
				{
					Title: "By Store Size",
					URL:   "/store-size/",
					Links: []NavLink{
						{Title: "Small Stores (0-1K orders/month)", URL: "/apps-for-small-stores/"},
						{Title: "Medium Stores (1K-10K orders/month)", URL: "/apps-for-medium-stores/"},
						{Title: "Enterprise (10K+ orders/month)", URL: "/apps-for-enterprise/"},
					},
				},
				{Title: "Disclosure", URL: "/affiliate-disclosure/"},
			},
		},
	}
}

func defaultStoreSize() map[string]string {
	phrases := []string{
		"small store", "small stores", "new shopify store", "beginning ecommerce",
		"0-1k orders", "under $10k", "medium store", "medium stores", "growing business",
		"1k-10k orders", "$10k-$100k", "enterprise store", "large business",
		"10k+ orders", "$100k+",
	}
	out := make(map[string]string, len(phrases))
	for _, p := range phrases {
		out[p] = "/store-size/"
	}
	return out
}

func defaultIntegrations() map[string]string {
	return map[string]string{
		"klaviyo integration": "/klaviyo-review/",
		"mailchimp sync":      "/mailchimp-review/",
		"hubspot crm":         "/hubspot-review/",
		"google analytics":    "/google-analytics-360-review/",
		"shopify plus":        "/best-shopify-apps-2025-ultimate-guide/",
		"facebook pixel":      "/best-shopify-apps-analytics-attribution/",
		"google ads":          "/best-shopify-apps-analytics-attribution/",
		"abandoned cart":      "/abandoned-cart-email-shopify/",
		"email automation":    "/best-shopify-apps-email-marketing/",
		"sms marketing":       "/postscript-review/",
		"live chat":           "/livechat-review/",
		"customer reviews":    "/reviews-social-proof-apps/",
	}
}

func defaultApps() map[string]string {
	return map[string]string{
		"klaviyo":              "/klaviyo-review/",
		"mailchimp":            "/mailchimp-review/",
		"activecampaign":       "/activecampaign-review/",
		"hubspot":              "/hubspot-review/",
		"moosend":              "/moosend-review/",
		"aweber":               "/aweber-review/",
		"kit":                  "/kit-review/",
		"convertkit":           "/kit-review/",
		"mailerlite":           "/mailerlite-review/",
		"getresponse":          "/getresponse-review/",
		"drip":                 "/drip-review/",
		"omnisend":             "/omnisend-review/",
		"constant contact":     "/constant-contact-review/",
		"postscript":           "/postscript-review/",
		"attentive":            "/attentive-review/",
		"salesforce":           "/salesforce-review/",
		"pipedrive":            "/pipedrive-review/",
		"close":                "/close-review/",
		"zoho crm":             "/zoho-crm-review/",
		"zendesk":              "/zendesk-review/",
		"gorgias":              "/gorgias-review/",
		"livechat":             "/livechat-review/",
		"judge.me":             "/judge-me-review/",
		"yotpo":                "/yotpo-review/",
		"stamped":              "/stamped-review/",
		"okendo":               "/okendo-review/",
		"optinmonster":         "/optinmonster-review/",
		"unbounce":             "/unbounce-review/",
		"sumo":                 "/sumo-review/",
		"privy":                "/privy-review/",
		"rebuy":                "/rebuy-review/",
		"recharge":             "/recharge-review/",
		"triple whale":         "/triple-whale-review/",
		"northbeam":            "/northbeam-review/",
		"mixpanel":             "/mixpanel-review/",
		"hotjar":               "/hotjar-review/",
		"crazy egg":            "/crazy-egg-review/",
		"google analytics 360": "/google-analytics-360-review/",
		"asana":                "/asana-review/",
		"clickup":              "/clickup-review/",
		"monday":               "/monday-review/",
		"trello":               "/trello-review/",
		"clickfunnels":         "/clickfunnels-review/",
		"leadpages":            "/leadpages-review/",
		"instapage":            "/instapage-review/",
		"builderall":           "/builderall-review/",
		"kartra":               "/kartra-review/",
		"thrive leads":         "/thrive-leads-review/",
	}
}

func defaultCategories() map[string]string {
	return map[string]string{
		"email marketing":         "/best-shopify-apps-email-marketing/",
		"conversion optimization": "/best-shopify-apps-conversion-optimization/",
		"crm":                     "/best-shopify-apps-crm-sales/",
		"customer service":        "/best-shopify-apps-customer-service/",
		"analytics":               "/best-shopify-apps-analytics-attribution/",
		"reviews":                 "/reviews-social-proof-apps/",
		"social proof":            "/reviews-social-proof-apps/",
		"project management":      "/best-shopify-apps-project-management/",
		"upsell":                  "/best-shopify-upsell-apps/",
		"cross-sell":              "/best-shopify-cross-sell-apps/",
	}
}
