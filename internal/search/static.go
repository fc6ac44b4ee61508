package search

// staticPage builds one compiled-in directory entry. Static entries carry no
// server score.
func staticPage(id, title, subtitle, urlPath, content string) Hit {
	return Hit{
		ID:       "page:" + id,
		Type:     TypePage,
		EntityID: id,
		Title:    title,
		Subtitle: subtitle,
		URLPath:  urlPath,
		Content:  content,
	}
}

// HelpArticles is the built-in help content published through the dynamic
// item registry, merged into the directory alongside pages.
func HelpArticles() []Hit {
	article := func(id, title, subtitle, urlPath, content string) Hit {
		return Hit{
			ID:       "help:" + id,
			Type:     TypeHelp,
			EntityID: id,
			Title:    title,
			Subtitle: subtitle,
			URLPath:  urlPath,
			Content:  content,
		}
	}
	return []Hit{
		article("getting-started", "Getting Started", "First steps on the platform", "/help/getting-started", "help tutorial introduction first deploy quickstart"),
		article("deploy-service", "Deploying a Service", "From image to running service", "/help/deploy-service", "help deploy service image registry environment"),
		article("custom-domains", "Custom Domains", "Pointing your own domain at a route", "/help/custom-domains", "help domains dns cname routes tls certificates"),
		article("search-operators", "Search Operators", "Filtering searches with type: and project:", "/help/search-operators", "help search operators filters type project status"),
		article("troubleshooting", "Troubleshooting", "Common failures and fixes", "/help/troubleshooting", "help troubleshooting errors crashloop logs debug"),
	}
}

// StaticPages is the compiled-in pages directory, the last link of the
// fallback chain. It must cover every top-level console destination so the
// palette can always navigate, even fully offline.
func StaticPages() []Hit {
	return []Hit{
		staticPage("dashboard", "Dashboard", "Cluster overview and recent activity", "/", "dashboard home overview activity cluster summary"),
		staticPage("projects", "Projects", "All projects on this platform", "/projects", "projects workspaces namespaces applications"),
		staticPage("project-new", "New Project", "Create a project", "/projects/new", "projects create new wizard"),
		staticPage("services", "Services", "Deployed services and workloads", "/services", "services workloads containers deployments replicas"),
		staticPage("service-new", "Deploy Service", "Deploy a new service", "/services/new", "services deploy create image container"),
		staticPage("routes", "Routes", "HTTP routes and ingress rules", "/routes", "routes ingress domains hosts paths tls"),
		staticPage("registries", "Registries", "Container image registries", "/registries", "registries images docker credentials pull push"),
		staticPage("env-templates", "Environment Templates", "Reusable environment variable sets", "/env-templates", "environment variables templates env config secrets"),
		staticPage("nodes", "Nodes", "Cluster nodes and capacity", "/nodes", "nodes machines hosts capacity cpu memory"),
		staticPage("clients", "Clients", "Connected agent clients", "/clients", "clients agents connections sockets"),
		staticPage("logs", "Logs", "Aggregated service logs", "/logs", "logs output stdout stderr tail follow"),
		staticPage("metrics", "Metrics", "Resource usage and performance", "/metrics", "metrics usage cpu memory network graphs"),
		staticPage("alerts", "Alerts", "Alert rules and notifications", "/alerts", "alerts notifications thresholds incidents"),
		staticPage("volumes", "Volumes", "Persistent volumes and mounts", "/volumes", "volumes storage mounts persistent disks"),
		staticPage("networks", "Networks", "Service networks and isolation", "/networks", "networks bridges isolation dns"),
		staticPage("certificates", "Certificates", "TLS certificates and renewal", "/certificates", "certificates tls ssl https letsencrypt renewal"),
		staticPage("domains", "Domains", "Custom domains", "/domains", "domains dns custom hostnames"),
		staticPage("backups", "Backups", "Backup schedules and restore", "/backups", "backups restore snapshots schedules"),
		staticPage("webhooks", "Webhooks", "Outgoing event webhooks", "/webhooks", "webhooks events callbacks integrations"),
		staticPage("admins", "Admins", "Administrator accounts", "/admins", "admins users accounts permissions"),
		staticPage("api-tokens", "API Tokens", "Programmatic access tokens", "/settings/tokens", "api tokens keys access programmatic"),
		staticPage("audit-log", "Audit Log", "Administrative action history", "/audit", "audit log history actions admin security"),
		staticPage("settings", "Settings", "Platform settings", "/settings", "settings configuration options preferences"),
		staticPage("settings-search", "Search Settings", "Search index and FTS configuration", "/settings/search", "search settings index fts5 full text"),
		staticPage("help", "Help", "Documentation and support", "/help", "help documentation docs support guides"),
	}
}
