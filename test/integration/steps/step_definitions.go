//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

func registerSetupSteps(ctx *godog.ScenarioContext, t *testContext) {
	ctx.Given(`^the API server is running$`, t.theAPIServerIsRunning)
	ctx.Given(`^an account exists with name "([^"]*)", email "([^"]*)" and password "([^"]*)"$`, t.anAccountExists)
	ctx.Given(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, t.iAmLoggedInAs)
	ctx.Given(`^the email provider responds with status (\d+)$`, t.theEmailProviderRespondsWithStatus)
}

func registerRequestSteps(ctx *godog.ScenarioContext, t *testContext) {
	ctx.Given(`^the header is empty$`, t.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, t.theHeaderContainsTheKeyWith)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, t.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, t.iSendARequestToWithBody)
	ctx.When(`^I send (\d+) "([^"]*)" requests to "([^"]*)" with body:$`, t.iSendRequestsToWithBody)
	ctx.When(`^the email worker processes the queue$`, t.theEmailWorkerProcessesTheQueue)
	ctx.When(`^I take the token from the latest "([^"]*)" email$`, t.iTakeTheTokenFromTheLatestEmail)
}

func registerResponseSteps(ctx *godog.ScenarioContext, t *testContext) {
	ctx.Then(`^the response status should be (\d+)$`, t.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, t.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, t.theResponseShouldContain)
	ctx.Then(`^the response should not contain "([^"]*)"$`, t.theResponseShouldNotContain)
	ctx.Then(`^the response body should include "([^"]*)"$`, t.theResponseBodyShouldInclude)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, t.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, t.theResponseFieldShouldExist)
	ctx.Then(`^the response header "([^"]*)" should be "([^"]*)"$`, t.theResponseHeaderShouldBe)
	ctx.Then(`^the response should set the "([^"]*)" cookie$`, t.theResponseShouldSetTheCookie)
	ctx.Then(`^the response should clear the "([^"]*)" cookie$`, t.theResponseShouldClearTheCookie)
}

func registerStateSteps(ctx *godog.ScenarioContext, t *testContext) {
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, t.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, t.theDbShouldContainObjectsInWithTheValues)
	ctx.Then(`^the email provider should have received (\d+) emails?$`, t.theEmailProviderShouldHaveReceived)
	ctx.Then(`^the last email sent should be addressed to "([^"]*)"$`, t.theLastEmailSentShouldBeAddressedTo)
}

func (t *testContext) theAPIServerIsRunning() error {
	if t.server == nil {
		return errors.New("test server is not running")
	}
	resp, err := t.client.Get(t.server.URL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) anAccountExists(name, email, password string) error {
	payload, _ := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/register", payload); err != nil {
		return err
	}
	if t.response.status != http.StatusCreated {
		return fmt.Errorf("failed to register %s: %d %s", email, t.response.status, t.response.raw)
	}
	return nil
}

func (t *testContext) iAmLoggedInAs(email, password string) error {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/login", payload); err != nil {
		return err
	}
	if t.response.status != http.StatusOK {
		return fmt.Errorf("failed to log in as %s: %d %s", email, t.response.status, t.response.raw)
	}
	return nil
}

func (t *testContext) theEmailProviderRespondsWithStatus(status int) error {
	body := map[string]any{"id": "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}
	if status >= http.StatusBadRequest {
		body = map[string]any{"statusCode": status, "name": "validation_error", "message": "Invalid `to` field."}
	}
	t.resend.SetResponse(http.MethodPost, resendEmailPath, status, body)
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = t.replacePlaceholders(value)
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	return t.executeRequest(method, t.replacePlaceholders(path), []byte(t.replacePlaceholders(body.Content)))
}

func (t *testContext) iSendRequestsToWithBody(count int, method, path string, body *godog.DocString) error {
	for i := 0; i < count; i++ {
		if err := t.iSendARequestToWithBody(method, path, body); err != nil {
			return err
		}
	}
	return nil
}

func (t *testContext) theEmailWorkerProcessesTheQueue() error {
	t.injector.EmailWorker.ProcessNow(context.Background())
	return nil
}

// iTakeTheTokenFromTheLatestEmail reads the one-time token out of the action
// link of the newest queued email with the given template.
func (t *testContext) iTakeTheTokenFromTheLatestEmail(template string) error {
	var job model.EmailQueueModel
	err := t.db.DbConn.
		Where("template_type = ?", template).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		return fmt.Errorf("no %s email queued: %w", template, err)
	}

	var data map[string]string
	if err := json.Unmarshal([]byte(job.TemplateData), &data); err != nil {
		return err
	}
	link, err := url.Parse(data["action_url"])
	if err != nil {
		return err
	}
	t.emailToken = link.Query().Get("token")
	if t.emailToken == "" {
		return fmt.Errorf("email %s has no token in %q", job.ID, data["action_url"])
	}
	return nil
}

func (t *testContext) replacePlaceholders(content string) string {
	return strings.NewReplacer(
		"{{access_token}}", t.accessToken,
		"{{refresh_token}}", t.refreshToken,
		"{{email_token}}", t.emailToken,
	).Replace(content)
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status:  resp.StatusCode,
		raw:     string(bodyBytes),
		headers: resp.Header,
		cookies: resp.Cookies(),
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = responseBody

	if token, ok := responseBody["access_token"].(string); ok && token != "" {
		t.accessToken = token
	}
	if token, ok := responseBody["refresh_token"].(string); ok && token != "" {
		t.refreshToken = token
	}
	return nil
}

func (t *testContext) jsonBody() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %s)", expectedStatus, t.response.status, t.response.raw)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	_, err := t.jsonBody()
	return err
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if getFieldValue(body, field) == nil {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseShouldNotContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if value := getFieldValue(body, field); value != nil {
		return fmt.Errorf("response should not contain field '%s', got %v", field, value)
	}
	return nil
}

func (t *testContext) theResponseBodyShouldInclude(text string) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if !strings.Contains(t.response.raw, text) {
		return fmt.Errorf("response body does not include %q", text)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	return t.theResponseShouldContain(field)
}

func (t *testContext) theResponseHeaderShouldBe(header, expected string) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if actual := t.response.headers.Get(header); actual != expected {
		return fmt.Errorf("header %s expected %q, got %q", header, expected, actual)
	}
	return nil
}

func (t *testContext) findCookie(name string) (*http.Cookie, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	for _, cookie := range t.response.cookies {
		if cookie.Name == name {
			return cookie, nil
		}
	}
	return nil, fmt.Errorf("cookie %s not set", name)
}

func (t *testContext) theResponseShouldSetTheCookie(name string) error {
	cookie, err := t.findCookie(name)
	if err != nil {
		return err
	}
	if cookie.Value == "" || !cookie.HttpOnly {
		return fmt.Errorf("cookie %s should carry a value and be HttpOnly: %+v", name, cookie)
	}
	return nil
}

func (t *testContext) theResponseShouldClearTheCookie(name string) error {
	cookie, err := t.findCookie(name)
	if err != nil {
		return err
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		return fmt.Errorf("cookie %s was not cleared: %+v", name, cookie)
	}
	return nil
}

func (t *testContext) newModelSlice(table string) (any, error) {
	entity, ok := t.db.GetModel(table)
	if !ok {
		return nil, fmt.Errorf("table '%s' not found in models", table)
	}
	entityType := reflect.TypeOf(entity).Elem()
	slicePtr := reflect.New(reflect.SliceOf(entityType))
	slicePtr.Elem().Set(reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0))
	return slicePtr.Interface(), nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	return t.countRows(quantity, table, nil)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}
	return t.countRows(quantity, table, criteria)
}

func (t *testContext) countRows(quantity int, table string, criteria map[string]any) error {
	rows, err := t.newModelSlice(table)
	if err != nil {
		return err
	}

	query := t.db.DbConn
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	result := query.Find(rows)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	count := reflect.ValueOf(rows).Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func (t *testContext) theEmailProviderShouldHaveReceived(count int) error {
	received := t.resend.Requests(http.MethodPost, resendEmailPath)
	if len(received) != count {
		return fmt.Errorf("expected %d emails sent, got %d", count, len(received))
	}
	return nil
}

func (t *testContext) theLastEmailSentShouldBeAddressedTo(recipient string) error {
	received := t.resend.Requests(http.MethodPost, resendEmailPath)
	if len(received) == 0 {
		return errors.New("no emails sent")
	}
	last := received[len(received)-1]
	if auth := last.Headers["Authorization"]; !strings.HasPrefix(auth, "Bearer ") {
		return fmt.Errorf("email request missing bearer token: %q", auth)
	}
	to, _ := last.Body["to"].([]any)
	for _, addr := range to {
		if s, ok := addr.(string); ok && strings.Contains(s, recipient) {
			return nil
		}
	}
	return fmt.Errorf("last email was sent to %v, expected %s", to, recipient)
}

func getFieldValue(object map[string]any, dotSeparatedField string) any {
	var field any = object
	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}
		if i, err := strconv.Atoi(currentField); err == nil {
			arr, ok := field.([]any)
			if !ok || i >= len(arr) {
				return nil
			}
			field = arr[i]
			continue
		}
		m, ok := field.(map[string]any)
		if !ok {
			return nil
		}
		field = m[currentField]
	}
	return field
}
