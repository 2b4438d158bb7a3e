package auth

import "fmt"

// AccessResolver computes the apps/views bundle embedded in a freshly issued
// token. Front-ends render navigation purely from the token, so the bundle
// reflects grants at issuance time only; staleness is handled by the
// access_version check on later validations.
type AccessResolver struct {
	repo Repository
}

func NewAccessResolver(repo Repository) *AccessResolver {
	return &AccessResolver{repo: repo}
}

// Resolve builds the claim bundle for a user. Views granted to the user or
// to one of their apps are merged; any view not reconciled into an app
// bucket lands in a synthetic "other" app so the navigation always has a
// home for it.
func (r *AccessResolver) Resolve(u *User) (*Claims, error) {
	apps, err := r.repo.ActiveAppsForUser(u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve apps: %w", err)
	}

	userViews, err := r.repo.ActiveViewNamesForUser(u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve user views: %w", err)
	}

	appNames := make([]string, 0, len(apps))
	appsViews := make(map[string][]string, len(apps))

	viewSet := make(map[string]struct{})
	viewOrder := make([]string, 0, len(userViews))
	addView := func(name string) {
		if _, seen := viewSet[name]; !seen {
			viewSet[name] = struct{}{}
			viewOrder = append(viewOrder, name)
		}
	}

	for _, v := range userViews {
		addView(v)
	}

	appBucketed := make(map[string]struct{})
	for _, app := range apps {
		appNames = append(appNames, app.Name)

		views, err := r.repo.ActiveViewNamesForApp(app.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve views for app %d: %w", app.ID, err)
		}
		appsViews[app.Name] = views

		for _, v := range views {
			addView(v)
			appBucketed[v] = struct{}{}
		}
	}

	// Views observed but never attributed to an app (typically direct user
	// grants) form the synthetic "other" bucket.
	var others []string
	for _, v := range viewOrder {
		if _, ok := appBucketed[v]; !ok {
			others = append(others, v)
		}
	}
	if len(others) > 0 {
		appNames = append(appNames, "other")
		appsViews["other"] = others
	}

	return &Claims{
		ID:              u.ID,
		Name:            u.FirstName + " " + u.LastName,
		Email:           u.Email,
		Phone:           u.Phone,
		PasswordTemp:    u.PasswordTemp != nil,
		PasswordVersion: u.PasswordVersion,
		AccessVersion:   u.AccessVersion,
		UserGroup:       u.UserGroupID,
		Apps:            appNames,
		Views:           viewOrder,
		AppsViews:       appsViews,
	}, nil
}
