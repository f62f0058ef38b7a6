package filter

import "github.com/johnwards/hubsync/internal/domain"

// ContactPolicy returns the property classification for contacts.
func ContactPolicy() Policy {
	return Policy{
		objectType: domain.TypeContact,
		dedupKey:   "email",
		coreFields: newSet(
			"email", "firstname", "lastname", "phone", "mobilephone",
			"company", "jobtitle", "website", "address", "city",
			"state", "zip", "country", "lifecyclestage",
		),
		systemPrefixes: []string{
			"hs_additional_", "hs_all_", "hs_analytics_", "hs_associated_",
			"hs_avatar_", "hs_buying_", "hs_calculated_", "hs_clicked_",
			"hs_contact_", "hs_content_", "hs_conversations_", "hs_count_",
			"hs_country_", "hs_created_", "hs_createdate_", "hs_cross_",
			"hs_currently_", "hs_customer_", "hs_data_", "hs_document_",
			"hs_email_", "hs_emailconfirmationstatus_", "hs_employment_",
			"hs_enriched_", "hs_facebook_", "hs_facebookid_", "hs_feedback_",
			"hs_first_", "hs_full_", "hs_google_", "hs_googleplusid_",
			"hs_gps_", "hs_has_", "hs_inferred_", "hs_intent_", "hs_ip_",
			"hs_is_", "hs_job_", "hs_journey_", "hs_language_", "hs_last_",
			"hs_lastmodifieddate_", "hs_latest_", "hs_latitude_", "hs_lead_",
			"hs_legal_", "hs_linkedin_", "hs_linkedinid_", "hs_live_",
			"hs_longitude_", "hs_marketable_", "hs_membership_", "hs_merged_",
			"hs_messaging_", "hs_mobile_", "hs_notes_", "hs_object_",
			"hs_owning_", "hs_persona_", "hs_pinned_", "hs_pipeline_",
			"hs_predictivecontactscore_", "hs_predictivecontactscorebucket_",
			"hs_predictivescoringtier_", "hs_prospecting_", "hs_quarantined_",
			"hs_read_", "hs_recent_", "hs_registered_", "hs_registration_",
			"hs_returning_", "hs_role_", "hs_sa_", "hs_sales_",
			"hs_searchable_", "hs_seniority_", "hs_sequences_", "hs_shared_",
			"hs_social_", "hs_source_", "hs_state_", "hs_sub_",
			"hs_testpurge_", "hs_testrollback_", "hs_time_", "hs_timezone_",
			"hs_twitterid_", "hs_unique_", "hs_updated_", "hs_user_",
			"hs_v2_", "hs_was_", "hs_whatsapp_",
		},
		readonlyPrefixes: sharedReadonlyPrefixes,
		readonlyExactFields: newSet(
			"createdate", "lastmodifieddate", "hs_object_id",
			"first_deal_created_date", "recent_conversion_date",
			"first_conversion_date", "recent_conversion_event_name",
			"first_conversion_event_name", "num_conversion_events",
			"num_unique_conversion_events", "days_to_close",
		),
		productionIdentifiers: newSet(
			"associatedcompanyid", "hubspot_owner_id", "hubspot_team_id",
			"hubspot_owner_assigneddate", "hs_all_owner_ids", "hs_all_team_ids",
			"hs_created_by_user_id", "hs_updated_by_user_id",
			"hs_object_source_user_id",
			"hs_contact_creation_legal_basis_source_instance_id",
			"hs_facebook_click_id", "hs_google_click_id",
			"hs_first_closed_order_id", "hs_first_engagement_object_id",
			"hs_marketable_reason_id", "hs_object_source_id",
			"hs_source_object_id", "hs_source_portal_id",
			"hs_pinned_engagement_id",
		),
		analyticsFields: newSet(
			"ip_city", "ip_country", "ip_country_code", "ip_state",
			"ip_state_code", "ip_zipcode", "ip_latlon",
		),
	}
}

// CompanyPolicy returns the property classification for companies.
func CompanyPolicy() Policy {
	return Policy{
		objectType: domain.TypeCompany,
		dedupKey:   "domain",
		coreFields: newSet(
			"name", "domain", "website", "phone", "address", "address2",
			"city", "state", "zip", "country", "industry", "description",
			"founded_year", "is_public", "timezone", "type", "annualrevenue",
			"numberofemployees", "about_us", "linkedincompanypage",
			"facebookcompanypage", "twitterhandle",
		),
		systemPrefixes:   []string{"hs_", "hubspot_"},
		readonlyPrefixes: sharedReadonlyPrefixes,
		readonlyExactFields: newSet(
			"createdate", "lastmodifieddate", "hs_object_id",
			"notes_last_contacted", "notes_last_updated", "notes_next_activity_date",
		),
		productionIdentifiers: newSet(
			"hubspot_owner_id", "hubspot_team_id", "hubspot_owner_assigneddate",
		),
		analyticsFields: newSet(),
	}
}

// DealPolicy returns the property classification for deals.
func DealPolicy() Policy {
	return Policy{
		objectType: domain.TypeDeal,
		dedupKey:   "dealname",
		coreFields: newSet(
			"dealname", "amount", "closedate", "dealtype",
			"dealstage", "pipeline", "description",
		),
		systemPrefixes: []string{
			"hs_additional_", "hs_all_", "hs_analytics_", "hs_associated_",
			"hs_buying_", "hs_calculated_", "hs_clicked_", "hs_closed_",
			"hs_createdate_", "hs_cross_", "hs_currently_", "hs_customer_",
			"hs_data_", "hs_deal_", "hs_document_", "hs_email_",
			"hs_first_", "hs_forecast_", "hs_full_", "hs_has_",
			"hs_inferred_", "hs_is_", "hs_last_", "hs_lastmodifieddate_",
			"hs_latest_", "hs_lead_", "hs_likelihood_", "hs_merged_",
			"hs_next_", "hs_notes_", "hs_object_", "hs_owning_",
			"hs_predictive_", "hs_projected_", "hs_read_", "hs_recent_",
			"hs_sales_", "hs_searchable_", "hs_shared_", "hs_source_",
			"hs_time_", "hs_timezone_", "hs_unique_", "hs_updated_",
			"hs_user_", "hs_was_",
		},
		readonlyPrefixes: append([]string{
			"count_", "days_", "closed_", "hs_closed_", "hs_days_",
		}, sharedReadonlyPrefixes...),
		readonlyExactFields: newSet(
			"createdate", "lastmodifieddate", "hs_object_id", "hs_deal_id",
			"num_contacted_notes", "num_notes", "dealid", "deal_id",
			"days_to_close", "closed_won_count", "closed_lost_count",
			"first_deal_created_date", "recent_deal_close_date",
		),
		productionIdentifiers: newSet(
			"hubspot_owner_id", "hubspot_team_id", "associatedcompanyids",
			"associatedvids", "hs_all_owner_ids", "hs_all_team_ids",
			"hs_created_by_user_id", "hs_updated_by_user_id",
			"hs_object_source_user_id", "hs_object_source_id",
			"hs_source_object_id", "hs_source_portal_id",
			"hs_pinned_engagement_id", "hs_first_engagement_object_id",
		),
		analyticsFields: newSet(
			"hs_analytics_source", "hs_analytics_source_data_1",
			"hs_analytics_source_data_2", "ip_city", "ip_country",
		),
	}
}

// TicketPolicy returns the property classification for tickets.
func TicketPolicy() Policy {
	return Policy{
		objectType: domain.TypeTicket,
		dedupKey:   "subject",
		coreFields: newSet(
			"subject", "content", "hs_ticket_priority", "hs_ticket_category",
			"hs_pipeline", "hs_pipeline_stage", "source_type",
		),
		systemPrefixes: []string{
			"hs_all_", "hs_created_", "hs_date_", "hs_feedback_",
			"hs_first_", "hs_last_", "hs_lastactivitydate_", "hs_latest_",
			"hs_nps_", "hs_num_", "hs_object_", "hs_resolution_",
			"hs_seq_", "hs_source_", "hs_thread_", "hs_time_",
			"hs_updated_", "hs_user_", "hs_was_",
		},
		readonlyPrefixes: sharedReadonlyPrefixes,
		readonlyExactFields: newSet(
			"createdate", "lastmodifieddate", "hs_object_id",
			"closed_date", "time_to_close", "time_to_first_agent_reply",
		),
		productionIdentifiers: newSet(
			"hubspot_owner_id", "hubspot_team_id", "hs_all_owner_ids",
			"hs_all_team_ids", "hs_created_by_user_id",
			"hs_updated_by_user_id", "hs_object_source_id",
			"hs_source_object_id", "hs_source_portal_id",
		),
		analyticsFields: newSet(),
	}
}

// CustomObjectPolicy returns a baseline classification for a custom object
// type. Custom schemas have no fixed core fields beyond their primary
// display property, so only the shared name heuristics apply.
func CustomObjectPolicy(t domain.ObjectType, primaryDisplayProperty string) Policy {
	core := newSet()
	if primaryDisplayProperty != "" {
		core = newSet(primaryDisplayProperty)
	}
	return Policy{
		objectType:       t,
		dedupKey:         primaryDisplayProperty,
		coreFields:       core,
		systemPrefixes:   []string{"hs_", "hubspot_"},
		readonlyPrefixes: sharedReadonlyPrefixes,
		readonlyExactFields: newSet(
			"createdate", "lastmodifieddate", "hs_object_id",
		),
		productionIdentifiers: newSet(
			"hubspot_owner_id", "hubspot_team_id",
		),
		analyticsFields: newSet(),
	}
}
