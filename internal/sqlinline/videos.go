package sqlinline

const QInsertVideo = `--sql e37d5a1d-a805-4014-a1ed-15e351290546
insert into videos (job_id, prompt, video_url, provider, created_at)
values (nullif($1::text, ''), $2::text, $3::text, nullif($4::text, ''), now())
returning id, created_at;
`

const QListVideos = `--sql 7fc70f04-2420-4c9f-9c03-466b5c74cff3
select id, coalesce(job_id, ''), prompt, video_url, coalesce(provider, ''), created_at
from videos
order by id desc;
`
