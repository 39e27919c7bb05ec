package sqlinline

const QInsertJob = `--sql 304ee940-50dd-47c2-aed8-95190a0aa1f8
insert into jobs (id, user_phone, user_prompt, enhanced_prompt, status, video_url, provider, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::text, $5::text, nullif($6::text, ''), nullif($7::text, ''), now(), now())
returning created_at, updated_at;
`

const QSelectJobByID = `--sql 6057e622-d1e6-4fa5-87a7-867b7d23a0dc
select id, user_phone, user_prompt, coalesce(enhanced_prompt, ''), status,
       coalesce(video_url, ''), coalesce(provider, ''), created_at, updated_at
from jobs
where id = $1::text;
`

const QListJobsByUser = `--sql 32e881a2-b900-4fa5-8c95-f09d1451c014
select id, user_phone, user_prompt, coalesce(enhanced_prompt, ''), status,
       coalesce(video_url, ''), coalesce(provider, ''), created_at, updated_at
from jobs
where user_phone = $1::text
order by created_at desc, id desc
limit $2::int;
`

// QTransitionJob only touches rows whose current status is listed in $5, so a
// terminal job is never overwritten by a late writer.
const QTransitionJob = `--sql bcebc0f3-d434-45f3-ba3b-8d03e29015fe
update jobs
set status = $2::text,
    video_url = coalesce(nullif($3::text, ''), video_url),
    provider = coalesce(nullif($4::text, ''), provider),
    updated_at = now()
where id = $1::text
  and status = any($5::text[]);
`

const QDeleteJob = `--sql 86a959bb-4a50-44bf-85e3-dd1e083a3030
delete from jobs
where id = $1::text;
`

const QDeleteJobsByUser = `--sql 5e26b7f1-cf81-44a3-ab35-e0c07c42c00b
delete from jobs
where user_phone = $1::text;
`
