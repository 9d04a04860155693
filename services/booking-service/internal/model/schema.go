package model

type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldBool
	FieldTime
)

// FieldSpec maps an API field name onto a column the list queries may filter or sort by.
type FieldSpec struct {
	Column     string
	Type       FieldType
	Filterable bool
	Sortable   bool
}

// Schema describes one listable entity.
type Schema struct {
	Entity       string
	Fields       map[string]FieldSpec
	DefaultOrder string
}

func (s Schema) Field(name string) (FieldSpec, bool) {
	f, ok := s.Fields[name]
	return f, ok
}

var AppointmentSchema = Schema{
	Entity:       "appointment",
	DefaultOrder: "a.start_time DESC",
	Fields: map[string]FieldSpec{
		"id":             {Column: "a.id::text", Type: FieldString, Filterable: true},
		"userId":         {Column: "a.user_id::text", Type: FieldString, Filterable: true},
		"specialtyId":    {Column: "a.specialty_id::text", Type: FieldString, Filterable: true},
		"startTime":      {Column: "a.start_time", Type: FieldTime, Filterable: true, Sortable: true},
		"endTime":        {Column: "a.end_time", Type: FieldTime, Filterable: true, Sortable: true},
		"status":         {Column: "a.status", Type: FieldString, Filterable: true, Sortable: true},
		"notes":          {Column: "a.notes", Type: FieldString, Filterable: true},
		"adminNotes":     {Column: "a.admin_notes", Type: FieldString, Filterable: true},
		"confirmedAt":    {Column: "a.confirmed_at", Type: FieldTime, Filterable: true, Sortable: true},
		"canceledAt":     {Column: "a.canceled_at", Type: FieldTime, Filterable: true, Sortable: true},
		"enabled":        {Column: "a.enabled", Type: FieldBool, Filterable: true},
		"active":         {Column: "a.active", Type: FieldBool, Filterable: true},
		"createdAt":      {Column: "a.created_at", Type: FieldTime, Filterable: true, Sortable: true},
		"updatedAt":      {Column: "a.updated_at", Type: FieldTime, Filterable: true, Sortable: true},
		"user.phone":     {Column: "u.phone", Type: FieldString, Filterable: true},
		"user.name":      {Column: "u.name", Type: FieldString, Filterable: true, Sortable: true},
		"specialty.name": {Column: "s.name", Type: FieldString, Filterable: true, Sortable: true},
	},
}

var SpecialtySchema = Schema{
	Entity:       "specialty",
	DefaultOrder: "name ASC",
	Fields: map[string]FieldSpec{
		"id":              {Column: "id::text", Type: FieldString, Filterable: true},
		"name":            {Column: "name", Type: FieldString, Filterable: true, Sortable: true},
		"description":     {Column: "description", Type: FieldString, Filterable: true},
		"avgDuration":     {Column: "avg_duration", Type: FieldNumber, Filterable: true, Sortable: true},
		"price":           {Column: "price", Type: FieldNumber, Filterable: true, Sortable: true},
		"maxSimultaneous": {Column: "max_simultaneous", Type: FieldNumber, Filterable: true, Sortable: true},
		"enabled":         {Column: "enabled", Type: FieldBool, Filterable: true},
		"active":          {Column: "active", Type: FieldBool, Filterable: true},
		"createdAt":       {Column: "created_at", Type: FieldTime, Filterable: true, Sortable: true},
	},
}

var UserSchema = Schema{
	Entity:       "user",
	DefaultOrder: "created_at DESC",
	Fields: map[string]FieldSpec{
		"id":        {Column: "id::text", Type: FieldString, Filterable: true},
		"phone":     {Column: "phone", Type: FieldString, Filterable: true, Sortable: true},
		"name":      {Column: "name", Type: FieldString, Filterable: true, Sortable: true},
		"role":      {Column: "role", Type: FieldString, Filterable: true, Sortable: true},
		"enabled":   {Column: "enabled", Type: FieldBool, Filterable: true},
		"active":    {Column: "active", Type: FieldBool, Filterable: true},
		"createdAt": {Column: "created_at", Type: FieldTime, Filterable: true, Sortable: true},
	},
}

var WhatsAppLogSchema = Schema{
	Entity:       "whatsapp_log",
	DefaultOrder: "created_at DESC",
	Fields: map[string]FieldSpec{
		"id":            {Column: "id::text", Type: FieldString, Filterable: true},
		"phone":         {Column: "phone", Type: FieldString, Filterable: true, Sortable: true},
		"messageType":   {Column: "message_type", Type: FieldString, Filterable: true, Sortable: true},
		"status":        {Column: "status", Type: FieldString, Filterable: true, Sortable: true},
		"appointmentId": {Column: "appointment_id::text", Type: FieldString, Filterable: true},
		"sentAt":        {Column: "sent_at", Type: FieldTime, Filterable: true, Sortable: true},
		"createdAt":     {Column: "created_at", Type: FieldTime, Filterable: true, Sortable: true},
	},
}
