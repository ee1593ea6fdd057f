/*
Package config loads and validates the sitesweep configuration.

	            +-------------+
	            |   Config    |
	            |  (tables)   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   HCL    | |   YAML   | |   JSON   |
	+----------+ +----------+ +----------+

🎯 Purpose:
  - Holds the rule tables (app review urls, category pages, link groups,
    store size, integration and hub phrases, workflows, the site header)
  - Holds site constants (base url, measurement id, asset paths)
  - Selects files (include/exclude globs) and the default rule pipeline

🔄 Flow:
 1. FindConfig looks for .sitesweep.{hcl,yaml,yml,json} in the working dir
 2. LoadConfig parses by extension
 3. Validate fills every missing value from Default and rejects bad input
 4. Rule sets are built from the validated config and never mutate it

The tables are plain data passed into rule construction. Nothing in the
rule packages reads a package-level table, so a test can build a rule set
from any Config it likes.

🔍 Example (HCL):

	root     = "site"
	pipeline = ["consent-remove", "consent-add", "seo"]
	backup   = true

	site {
	  base_url = "https://example.com"
	  name     = "Example"
	}

	links {
	  apps = {
	    "klaviyo"  = "/klaviyo-review/"
	    "judge.me" = "/judge-me-review/"
	  }
	  group "email-marketing" {
	    title = "Email Marketing Apps"
	    url   = "/best-shopify-apps-email-marketing/"
	    apps  = ["klaviyo", "mailchimp"]
	  }
	  workflow "sms" {
	    phrases = ["text messaging", "sms marketing"]
	    text    = "SMS marketing"
	    url     = "/postscript-review/"
	    topics  = ["email"]
	  }
	}

	nav {
	  item "Best Tools" {
	    url = "/best-shopify-apps-2025-ultimate-guide/"
	  }
	  item "App Categories" {
	    url = "/app-categories/"
	    link "Email Marketing" {
	      url = "/best-shopify-apps-email-marketing/"
	    }
	  }
	}

	replacement {
	  old  = "Shopify App Authority"
	  new  = "ShopifyAppAuthority"
	  file = "*.html"
	}
*/
package config
