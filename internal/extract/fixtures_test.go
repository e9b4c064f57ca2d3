// internal/extract/fixtures_test.go

package extract

import "fmt"

const (
	postA = "7234567890123456789"
	postB = "7234567890123456790"
)

func sigiPage(state string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head>
<script id="SIGI_STATE" type="application/json">%s</script>
</head><body><div id="app"></div></body></html>`, state)
}

func universalPage(state string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">%s</script>
</head><body></body></html>`, state)
}

var sigiPostPage = sigiPage(`{"ItemModule":{"` + postA + `":{"id":"` + postA + `",
"desc":"Summer #beach #sun","createTime":"1690000000",
"stats":{"diggCount":1200,"commentCount":34,"shareCount":5,"playCount":45000}}}}`)

var universalPostPage = universalPage(`{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{
"id":"` + postB + `","desc":"Nested #one","createTime":1690000001,
"statsV2":{"diggCount":"99","commentCount":"1","shareCount":"2","playCount":"3"}}}}}}`)

var sigiProfilePage = sigiPage(`{"UserModule":{
"users":{"creator":{"uniqueId":"creator","signature":"Bio here","verified":true}},
"stats":{"creator":{"followerCount":1500,"followingCount":20,"heartCount":98000}}}}`)

var universalProfilePage = universalPage(`{"__DEFAULT_SCOPE__":{"webapp.user-detail":{"userInfo":{
"user":{"uniqueId":"creator","signature":"Nested bio","verified":false},
"stats":{"followerCount":"2000","followingCount":"7","heartCount":"12"}}}}}`)

const plainPage = `<html><body><h2 data-e2e="user-bio">dom bio</h2></body></html>`

// stubObserver returns fixed observations and counts calls.
type stubObserver struct {
	profile      Observation
	post         Observation
	err          error
	profileCalls int
	postCalls    int
}

func (s *stubObserver) ObserveProfile(string) (Observation, error) {
	s.profileCalls++
	return s.profile, s.err
}

func (s *stubObserver) ObservePost(string) (Observation, error) {
	s.postCalls++
	return s.post, s.err
}
