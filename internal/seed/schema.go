package seed

const datasetSchema = `{
  "type": "object",
  "title": "ActivitySeed",
  "properties": {
    "activities": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "schedule": {"type": "string"},
          "max_participants": {"type": "integer", "minimum": 0},
          "participants": {
            "type": "array",
            "items": {"type": "string", "minLength": 1},
            "uniqueItems": true
          }
        },
        "required": ["name", "description", "schedule", "max_participants"],
        "additionalProperties": false
      }
    }
  },
  "required": ["activities"]
}`
